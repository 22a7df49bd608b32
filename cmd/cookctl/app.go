package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/gommon/log"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/cookfile-viewer/backend/internal/chart"
	"github.com/cookfile-viewer/backend/internal/config"
	"github.com/cookfile-viewer/backend/internal/logging"
	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/remote"
	"github.com/cookfile-viewer/backend/internal/session"
)

const envKey = "cookctl"

// env is what Before prepares for every command.
type env struct {
	manager *session.Manager
	page    terminalPage
	logger  *log.Logger
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "cookctl",
		Usage:     "Inspect and edit cook sessions held by a session store",
		UsageText: "[OPTIONS] [COMMAND] [ARGS]",
		Version:   Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "cook-viewer.yaml",
				Usage:   "Path to the configuration file",
			},
			&cli.StringFlag{
				Name:    "session",
				Aliases: []string{"s"},
				Value:   "demo-cook.json",
				Usage:   "Cook session filename",
				EnvVars: []string{"COOKFILE_SESSION"},
			},
			&cli.StringFlag{
				Name:  "cookfile-id",
				Usage: "Media folder id of the session (defaults to the filename)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable coloured output",
			},
		},
		Before: beforeAction,
		Commands: []*cli.Command{
			{
				Name:      "graph",
				Usage:     "Print the session telemetry",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "png", Usage: "Also draw the chart into this PNG file"},
					&cli.BoolFlag{Name: "hide-annotations", Usage: "Leave annotations out of the drawing"},
					&cli.StringSliceFlag{Name: "hide", Usage: "Leave a series out of the drawing (GT1, GSP1, PT1, PSP1, PT2, PSP2)"},
				},
				Action: graphAction,
			},
			{
				Name:      "title",
				Usage:     "Rename the session",
				ArgsUsage: "<text>",
				Action:    titleAction,
			},
			{
				Name:      "label",
				Usage:     "Rename a probe",
				ArgsUsage: "<grill1|probe1|probe2> <text>",
				Action:    labelAction,
			},
			{
				Name:  "comment",
				Usage: "Manage comments",
				Subcommands: []*cli.Command{
					{Name: "add", Usage: "Add a comment", ArgsUsage: "<text>", Action: commentAddAction},
					{Name: "edit", Usage: "Print the stored text of a comment", ArgsUsage: "<id>", Action: commentEditAction},
					{Name: "save", Usage: "Replace the text of a comment", ArgsUsage: "<id> <text>", Action: commentSaveAction},
					{Name: "delete", Usage: "Delete a comment", ArgsUsage: "<id>", Action: commentDeleteAction},
				},
			},
			{
				Name:  "media",
				Usage: "Manage comment media",
				Subcommands: []*cli.Command{
					{Name: "candidates", Usage: "List every asset with its state for a comment", ArgsUsage: "<comment>", Action: mediaCandidatesAction},
					{Name: "toggle", Usage: "Attach or detach an asset", ArgsUsage: "<comment> <file>", Action: mediaToggleAction},
					{Name: "thumbs", Usage: "List the thumbnails of a comment", ArgsUsage: "<comment>", Action: mediaThumbsAction},
					{Name: "remove", Usage: "Build the bulk removal list", ArgsUsage: "<file>...", Action: mediaRemoveAction},
				},
			},
			{
				Name:      "image",
				Usage:     "Show an image, optionally stepping to its neighbor",
				ArgsUsage: "<file> <comment> [prev|next]",
				Action:    imageAction,
			},
		},
	}
}

func beforeAction(c *cli.Context) error {
	if c.Bool("no-color") {
		disableStyling()
	}

	path := c.String("config")
	if !filepath.IsAbs(path) {
		if wd, err := os.Getwd(); err == nil {
			path = filepath.Join(wd, path)
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	logger := logging.New("cookctl", cfg.Logging)
	client := remote.NewClient(remote.Options{
		BaseURL:    cfg.Remote.BaseURL,
		ReadPath:   cfg.Remote.ReadPath,
		MutatePath: cfg.Remote.MutatePath,
		Timeout:    cfg.RequestTimeout(),
		Codec:      remote.Codec(cfg.Remote.Codec),
		Logger:     logger,
	})
	manager := session.NewManager(client, session.Settings{
		ImagePath:    cfg.Media.ImagePath,
		Limits:       chart.Limits{YMin: cfg.Chart.YMin, YMax: cfg.Chart.YMax},
		VerifyToggle: cfg.Selection.VerifyToggle,
		Renderer:     chart.PNGRenderer{Width: cfg.Chart.Width, Height: cfg.Chart.Height},
	}, logger)

	c.App.Metadata = map[string]any{envKey: &env{
		manager: manager,
		page:    terminalPage{w: c.App.Writer},
		logger:  logger,
	}}
	return nil
}

func getEnv(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}

// open loads the session named by the global flags. Comments named by id are
// seeded so the ledger can address them.
func open(c *cli.Context, commentIDs ...string) (*session.Workspace, error) {
	e := getEnv(c)
	e.logger.Debugf("[cookctl] opening %s", c.String("session"))
	seed := make([]models.Comment, len(commentIDs))
	for i, id := range commentIDs {
		seed[i] = models.Comment{ID: id}
	}
	return e.manager.Open(c.Context, session.OpenOptions{
		Filename:   c.String("session"),
		CookfileID: c.String("cookfile-id"),
		Comments:   seed,
		Views: session.Views{
			Comments:  e.page,
			Selection: e.page,
			Removal:   e.page,
			Viewer:    e.page,
			Labels:    e.page,
			Notifier:  e.page,
		},
	})
}

func args(c *cli.Context, n int) ([]string, error) {
	if c.Args().Len() < n {
		return nil, fmt.Errorf("%s needs %d argument(s): %s", c.Command.Name, n, c.Command.ArgsUsage)
	}
	return c.Args().Slice(), nil
}

func graphAction(c *cli.Context) error {
	ws, err := open(c)
	if err != nil {
		return err
	}

	frame := ws.Chart.Frame()
	data := [][]string{{"SERIES", "LABEL", "SAMPLES", "GAPS", "MIN", "MAX"}}
	for _, s := range frame.Series {
		lo, hi, gaps := math.Inf(1), math.Inf(-1), 0
		for _, v := range s.Data {
			if math.IsNaN(v) {
				gaps++
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		minText, maxText := "-", "-"
		if !math.IsInf(lo, 1) {
			minText, maxText = strconv.FormatFloat(lo, 'f', 1, 64), strconv.FormatFloat(hi, 'f', 1, 64)
		}
		data = append(data, []string{s.Channel.Key(), s.Label, strconv.Itoa(len(s.Data)), strconv.Itoa(gaps), minText, maxText})
	}
	printTable(c.App.Writer, data)
	pterm.Info.Printfln("%d time labels, %d annotations", len(frame.TimeLabels), len(frame.Annotations))

	out := c.String("png")
	if out == "" {
		return nil
	}
	if c.Bool("hide-annotations") {
		ws.Chart.SetAnnotationsVisible(false)
	}
	for _, key := range c.StringSlice("hide") {
		ch, ok := models.ChannelByKey(key)
		if !ok {
			return fmt.Errorf("unknown series %q", key)
		}
		if err := ws.Chart.SetHidden(ch, true); err != nil {
			return err
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := ws.Chart.Draw(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	pterm.Success.Printfln("chart written to %s", out)
	return nil
}

func titleAction(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	ws, err := open(c)
	if err != nil {
		return err
	}
	return ws.Labels.SetTitle(c.Context, a[0])
}

func labelAction(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	probe, err := models.ParseProbe(a[0])
	if err != nil {
		return err
	}
	ws, err := open(c)
	if err != nil {
		return err
	}
	if err := ws.Labels.SetProbeLabel(c.Context, probe, a[1]); err != nil {
		return err
	}
	temp, setpoint := probe.Channels()
	pterm.Info.Printfln("%s: %s, %s: %s", temp.Key(), ws.Chart.Label(temp), setpoint.Key(), ws.Chart.Label(setpoint))
	return nil
}

func commentAddAction(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	ws, err := open(c)
	if err != nil {
		return err
	}
	_, err = ws.Comments.Create(c.Context, a[0])
	return err
}

func commentEditAction(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	ws, err := open(c, a[0])
	if err != nil {
		return err
	}
	_, err = ws.Comments.EnterEdit(c.Context, a[0])
	return err
}

func commentSaveAction(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	ws, err := open(c, a[0])
	if err != nil {
		return err
	}
	if _, err := ws.Comments.EnterEdit(c.Context, a[0]); err != nil {
		return err
	}
	_, err = ws.Comments.CommitEdit(c.Context, a[0], a[1])
	return err
}

func commentDeleteAction(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	ws, err := open(c, a[0])
	if err != nil {
		return err
	}
	return ws.Comments.Delete(c.Context, a[0])
}

func mediaCandidatesAction(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	ws, err := open(c, a[0])
	if err != nil {
		return err
	}
	_, err = ws.Selection.LoadCandidates(c.Context, a[0])
	return err
}

func mediaToggleAction(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	ws, err := open(c, a[0])
	if err != nil {
		return err
	}
	if _, err := ws.Selection.LoadCandidates(c.Context, a[0]); err != nil {
		return err
	}
	current, ok := ws.Selection.State(a[0], a[1])
	if !ok {
		return fmt.Errorf("%s is not in the media pool", a[1])
	}
	_, err = ws.Selection.Toggle(c.Context, a[0], a[1], current)
	return err
}

func mediaThumbsAction(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	ws, err := open(c, a[0])
	if err != nil {
		return err
	}
	_, err = ws.Selection.RefreshThumbnails(c.Context, a[0])
	return err
}

func mediaRemoveAction(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	ws, err := open(c)
	if err != nil {
		return err
	}
	if _, err := ws.Removal.Load(c.Context); err != nil {
		return err
	}
	for _, name := range a {
		if _, err := ws.Removal.Mark(name, true); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.App.Writer, ws.Removal.Submission())
	return nil
}

func imageAction(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	ws, err := open(c)
	if err != nil {
		return err
	}
	ws.Navigator.Open(a[0], a[1])
	if len(a) < 3 {
		return nil
	}
	dir, err := models.ParseDirection(a[2])
	if err != nil {
		return err
	}
	_, err = ws.Navigator.Advance(c.Context, dir)
	return err
}
