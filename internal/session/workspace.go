// Package session holds the per-session client state. A Workspace is created
// when a cook session is opened and torn down when it is closed; nothing in it
// outlives that window.
package session

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/cookfile-viewer/backend/internal/chart"
	"github.com/cookfile-viewer/backend/internal/comments"
	"github.com/cookfile-viewer/backend/internal/inflight"
	"github.com/cookfile-viewer/backend/internal/labels"
	"github.com/cookfile-viewer/backend/internal/media"
	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/notify"
	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/remote"
	"github.com/cookfile-viewer/backend/internal/telemetry"
)

// Views are the page collaborators a workspace drives. Nil fields discard updates.
type Views struct {
	Comments  comments.View
	Selection media.SelectionView
	Removal   media.RemovalSink
	Viewer    media.ViewerView
	Labels    labels.View
	Notifier  notify.Notifier
}

// Settings are shared by every workspace of a Manager.
type Settings struct {
	ImagePath    string
	Limits       chart.Limits
	VerifyToggle bool
	Renderer     chart.Renderer
}

// OpenOptions describe the session being opened.
type OpenOptions struct {
	Filename   string
	CookfileID string
	Title      string
	Comments   []models.Comment
	Views      Views
}

// Workspace is the client state of one open cook session.
type Workspace struct {
	Filename  string
	Builder   *telemetry.Builder
	Chart     *chart.Controller
	Labels    *labels.Editor
	Comments  *comments.Ledger
	Selection *media.SelectionManager
	Removal   *media.RemovalManager
	Navigator *media.Navigator

	store    remote.Store
	guard    *inflight.Guard
	reporter notify.Reporter
}

func newWorkspace(store remote.Store, settings Settings, opts OpenOptions, logger *log.Logger) *Workspace {
	guard := inflight.NewGuard()
	reporter := notify.NewLogReporter(logger, opts.Views.Notifier)
	paths := models.MediaPaths{ImagePath: settings.ImagePath, CookfileID: opts.CookfileID}
	if paths.CookfileID == "" {
		paths.CookfileID = opts.Filename
	}

	ws := &Workspace{
		Filename: opts.Filename,
		Builder:  telemetry.NewBuilder(logger),
		Chart:    chart.NewController(settings.Renderer, settings.Limits),
		store:    store,
		guard:    guard,
		reporter: reporter,
	}
	ws.Labels = labels.NewEditor(labels.Options{
		Filename: opts.Filename,
		Title:    opts.Title,
		Store:    store,
		Chart:    ws.Chart,
		Builder:  ws.Builder,
		View:     opts.Views.Labels,
		Guard:    guard,
		Reporter: reporter,
	})
	ws.Comments = comments.NewLedger(comments.Options{
		Filename: opts.Filename,
		Store:    store,
		View:     opts.Views.Comments,
		Guard:    guard,
		Reporter: reporter,
	})
	ws.Comments.Seed(opts.Comments)
	ws.Selection = media.NewSelectionManager(media.SelectionOptions{
		Filename: opts.Filename,
		Store:    store,
		View:     opts.Views.Selection,
		Guard:    guard,
		Reporter: reporter,
		Paths:    paths,
		Logger:   logger,
		Verify:   settings.VerifyToggle,
		OnAssets: ws.Comments.SetAssets,
	})
	ws.Removal = media.NewRemovalManager(media.RemovalOptions{
		Filename: opts.Filename,
		Store:    store,
		Sink:     opts.Views.Removal,
		Reporter: reporter,
	})
	ws.Navigator = media.NewNavigator(media.NavigatorOptions{
		Filename: opts.Filename,
		Store:    store,
		View:     opts.Views.Viewer,
		Guard:    guard,
		Reporter: reporter,
		Paths:    paths,
	})
	ws.Chart.SetTitle(opts.Title)
	return ws
}

// load fetches the session telemetry and renders the chart.
func (w *Workspace) load(ctx context.Context) error {
	req := protocol.FullGraph{Filename: w.Filename}
	p, err := w.store.Read(ctx, req)
	if err != nil {
		w.reporter.Report(req.Operation(), err)
		return fmt.Errorf("loading %s: %w", w.Filename, err)
	}
	if err := w.Chart.Render(w.Builder.Build(p)); err != nil {
		return fmt.Errorf("rendering %s: %w", w.Filename, err)
	}
	return nil
}

// Title returns the last confirmed session title.
func (w *Workspace) Title() string { return w.Labels.Title() }

// InFlight returns how many user actions are waiting for the store.
func (w *Workspace) InFlight() int { return w.guard.Len() }

// close releases the transient state: removal marks, the image cursor,
// rendered selection states and outstanding action keys.
func (w *Workspace) close() {
	w.Removal.Reset()
	w.Navigator.Close()
	w.Selection.Forget()
	w.guard.Reset()
}
