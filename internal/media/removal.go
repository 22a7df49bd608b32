package media

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/notify"
	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/remote"
)

// RemovalSink is the hidden form field that carries the bulk-delete list.
type RemovalSink interface {
	SetRemovalList(filenames []string)
}

// RemovalOptions configures a RemovalManager.
type RemovalOptions struct {
	Filename string
	Store    remote.Store
	Sink     RemovalSink
	Reporter notify.Reporter
}

// RemovalManager accumulates the assets marked for bulk removal. It never
// deletes anything itself.
type RemovalManager struct {
	opts   RemovalOptions
	mu     sync.Mutex
	assets []models.MediaAsset
	marks  map[string]bool
	order  []string // filenames marked true, oldest mark first
}

// NewRemovalManager creates an empty manager.
func NewRemovalManager(opts RemovalOptions) *RemovalManager {
	return &RemovalManager{opts: opts, marks: make(map[string]bool)}
}

// Load fetches the session's asset pool and initializes the marks from it.
func (r *RemovalManager) Load(ctx context.Context) ([]models.MediaAsset, error) {
	req := protocol.GetAllMedia{CookFilename: r.opts.Filename}
	assets, err := r.fetch(ctx, req)
	if err != nil {
		if r.opts.Reporter != nil {
			r.opts.Reporter.Report(req.Operation(), err)
		}
		return nil, err
	}
	r.Initialize(assets)
	return assets, nil
}

func (r *RemovalManager) fetch(ctx context.Context, req protocol.GetAllMedia) ([]models.MediaAsset, error) {
	p, err := r.opts.Store.Read(ctx, req)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeAssets(p)
}

// Initialize maps every known filename to false, discarding previous marks.
func (r *RemovalManager) Initialize(assets []models.MediaAsset) {
	r.mu.Lock()
	r.assets = append([]models.MediaAsset(nil), assets...)
	r.marks = make(map[string]bool, len(assets))
	for _, a := range assets {
		r.marks[a.Filename] = false
	}
	r.order = nil
	r.mu.Unlock()

	r.publish(nil)
}

// Mark sets the removal mark of filename and returns the filenames now
// marked, in the order they were marked.
func (r *RemovalManager) Mark(filename string, checked bool) ([]string, error) {
	r.mu.Lock()
	was, ok := r.marks[filename]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, filename)
	}
	r.marks[filename] = checked
	switch {
	case checked && !was:
		r.order = append(r.order, filename)
	case !checked && was:
		for i, name := range r.order {
			if name == filename {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	list := r.pendingLocked()
	r.mu.Unlock()

	r.publish(list)
	return list, nil
}

// Pending returns the filenames marked for removal.
func (r *RemovalManager) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pendingLocked()
}

func (r *RemovalManager) pendingLocked() []string {
	list := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if r.marks[name] {
			list = append(list, name)
		}
	}
	return list
}

// Marked reports the mark of filename.
func (r *RemovalManager) Marked(filename string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.marks[filename]
}

// Assets returns the pool the marks were initialized from.
func (r *RemovalManager) Assets() []models.MediaAsset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.MediaAsset(nil), r.assets...)
}

// Submission is the hidden-field value of the pending list.
func (r *RemovalManager) Submission() string {
	return strings.Join(r.Pending(), ",")
}

// Reset discards the pool and every mark.
func (r *RemovalManager) Reset() {
	r.Initialize(nil)
}

func (r *RemovalManager) publish(list []string) {
	if r.opts.Sink != nil {
		if list == nil {
			list = []string{}
		}
		r.opts.Sink.SetRemovalList(list)
	}
}
