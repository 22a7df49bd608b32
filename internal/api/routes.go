// routes.go - Route registration helpers
package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/storage"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Version        string
	BodyLimit      string // e.g. "8M"; empty disables the limit
	RequestLogging bool
	Logger         *log.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health  *HealthHandler
	Session *Handler
}

// NewHandlers creates all handler instances
func NewHandlers(store storage.Store, opts RouterOptions) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(opts.Version, store),
		Session: NewHandler(store, opts.Logger),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.POST(protocol.ReadPath, handlers.Session.HandleRead)
	e.POST(protocol.MutatePath, handlers.Session.HandleMutate)

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts RouterOptions) {
	e.HTTPErrorHandler = ErrorHandler
	e.JSONSerializer = JSONSerializer{}

	if opts.RequestLogging {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Request().URL.Path, "/health")
			},
		}))
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          log.ERROR,
	}))

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}
}

// NewRouter builds an Echo instance serving store.
func NewRouter(store storage.Store, opts RouterOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if opts.Logger != nil {
		e.Logger = opts.Logger
	}

	SetupMiddleware(e, opts)
	RegisterRoutes(e, NewHandlers(store, opts))
	return e
}
