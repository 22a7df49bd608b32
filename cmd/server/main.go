package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cookfile-viewer/backend/internal/api"
	"github.com/cookfile-viewer/backend/internal/config"
	"github.com/cookfile-viewer/backend/internal/logging"
	"github.com/cookfile-viewer/backend/internal/storage"
	"github.com/cookfile-viewer/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// demoFilename is the session the store is seeded with.
const demoFilename = "demo-cook.json"

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "cook-viewer.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("cookfile", cfg.Logging)

	store := storage.NewMemoryStore()
	start := time.Now().Add(-8 * time.Hour).Truncate(time.Minute)
	store.Put(storage.DemoSession(demoFilename, start))

	e := api.NewRouter(store, api.RouterOptions{
		Version:        Version,
		BodyLimit:      cfg.Server.BodyLimit,
		RequestLogging: cfg.Server.EnableRequestLogging,
		Logger:         logger,
	})

	mediaDir := "(disabled)"
	if cfg.Media.Dir != "" {
		if _, err := os.Stat(cfg.Media.Dir); err != nil {
			logger.Warnf("media dir %s not available: %v", cfg.Media.Dir, err)
		} else {
			web.RegisterMediaRoutes(e, cfg.Media.ImagePath, os.DirFS(cfg.Media.Dir))
			mediaDir = cfg.Media.Dir
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Cook Session Store                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Media:     %-46s║\n", mediaDir)
	fmt.Printf("║  Session:   %-46s║\n", demoFilename)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
