// Package labels edits the session title and the probe labels of the chart.
package labels

import (
	"context"
	"fmt"
	"sync"

	"github.com/cookfile-viewer/backend/internal/chart"
	"github.com/cookfile-viewer/backend/internal/inflight"
	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/notify"
	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/remote"
	"github.com/cookfile-viewer/backend/internal/telemetry"
)

// View is the title and label inputs of the page.
type View interface {
	// Confirm briefly highlights a field after its change was saved.
	Confirm(field string)
}

// Field names passed to View.Confirm.
const FieldTitle = "title"

// Options configures an Editor.
type Options struct {
	Filename string
	Title    string
	Store    remote.Store
	Chart    *chart.Controller
	Builder  *telemetry.Builder
	View     View
	Guard    *inflight.Guard
	Reporter notify.Reporter
}

// Editor sends title and label edits and applies them once confirmed.
type Editor struct {
	opts  Options
	mu    sync.RWMutex
	title string
}

// NewEditor creates an editor.
func NewEditor(opts Options) *Editor {
	if opts.Guard == nil {
		opts.Guard = inflight.NewGuard()
	}
	return &Editor{opts: opts, title: opts.Title}
}

// Title returns the last confirmed title.
func (e *Editor) Title() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.title
}

// SetTitle renames the session.
func (e *Editor) SetTitle(ctx context.Context, title string) error {
	cmd := protocol.EditTitle{Filename: e.opts.Filename, Title: title}
	err := e.opts.Guard.Do(inflight.Key{Entity: e.opts.Filename, Op: cmd.Operation()}, func() error {
		if _, err := e.opts.Store.Mutate(ctx, cmd); err != nil {
			return err
		}
		e.mu.Lock()
		e.title = title
		e.mu.Unlock()
		if e.opts.Chart != nil {
			e.opts.Chart.SetTitle(title)
		}
		e.confirm(FieldTitle)
		return nil
	})
	return e.done(cmd.Operation(), err)
}

// SetProbeLabel renames a probe. On success its temperature series is
// labeled text and its set-point series text + " Set Point".
func (e *Editor) SetProbeLabel(ctx context.Context, probe models.Probe, text string) error {
	if !probe.Valid() {
		return fmt.Errorf("unknown probe %q", probe)
	}
	cmd := protocol.SetGraphLabel{Filename: e.opts.Filename, Probe: probe, Label: text}
	err := e.opts.Guard.Do(inflight.Key{Entity: string(probe), Op: cmd.Operation()}, func() error {
		if _, err := e.opts.Store.Mutate(ctx, cmd); err != nil {
			return err
		}
		temp, setpoint := probe.Channels()
		if e.opts.Builder != nil {
			e.opts.Builder.SetLabel(temp, text)
			e.opts.Builder.SetLabel(setpoint, text+models.SetpointSuffix)
		}
		if e.opts.Chart != nil {
			if err := e.opts.Chart.ApplyProbeLabel(probe, text); err != nil {
				return err
			}
		}
		e.confirm(probe.LabelField())
		return nil
	})
	return e.done(cmd.Operation(), err)
}

func (e *Editor) confirm(field string) {
	if e.opts.View != nil {
		e.opts.View.Confirm(field)
	}
}

func (e *Editor) done(op string, err error) error {
	if err != nil && e.opts.Reporter != nil {
		e.opts.Reporter.Report(op, err)
	}
	return err
}
