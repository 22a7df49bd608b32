package media

import (
	"context"
	"errors"
	"sync"

	"github.com/cookfile-viewer/backend/internal/inflight"
	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/notify"
	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/remote"
)

// ErrNoCursor is returned when navigating with no image open.
var ErrNoCursor = errors.New("no image open")

// ViewerView is the full-size image viewer.
type ViewerView interface {
	ShowImage(ref models.ImageRef)
}

// Cursor is the image an open viewer shows.
type Cursor struct {
	CommentID string
	Filename  string
}

// NavigatorOptions configures a Navigator.
type NavigatorOptions struct {
	Filename string
	Store    remote.Store
	View     ViewerView
	Guard    *inflight.Guard
	Reporter notify.Reporter
	Paths    models.MediaPaths
}

// Navigator steps through a comment's images. The store decides what
// "previous" and "next" are; the navigator keeps no ordering of its own.
type Navigator struct {
	opts   NavigatorOptions
	mu     sync.Mutex
	cursor *Cursor
}

// NewNavigator creates a navigator with no image open.
func NewNavigator(opts NavigatorOptions) *Navigator {
	if opts.Guard == nil {
		opts.Guard = inflight.NewGuard()
	}
	return &Navigator{opts: opts}
}

// Open shows filename of commentID.
func (n *Navigator) Open(filename, commentID string) models.ImageRef {
	n.mu.Lock()
	n.cursor = &Cursor{CommentID: commentID, Filename: filename}
	n.mu.Unlock()

	ref := n.ref(commentID, filename)
	n.show(ref)
	return ref
}

// Cursor returns the open image, if any.
func (n *Navigator) Cursor() (Cursor, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cursor == nil {
		return Cursor{}, false
	}
	return *n.cursor, true
}

// Advance asks the store for the neighbor of the open image and shows it.
// On failure the cursor is unchanged.
func (n *Navigator) Advance(ctx context.Context, dir models.Direction) (models.ImageRef, error) {
	cur, ok := n.Cursor()
	if !ok {
		return models.ImageRef{}, ErrNoCursor
	}
	req := protocol.NavImage{
		Direction:     dir,
		MediaFilename: cur.Filename,
		CommentID:     cur.CommentID,
		CookFilename:  n.opts.Filename,
	}

	var ref models.ImageRef
	err := n.opts.Guard.Do(inflight.Key{Entity: cur.CommentID, Op: req.Operation()}, func() error {
		p, err := n.opts.Store.Read(ctx, req)
		if err != nil {
			return err
		}
		next, err := protocol.DecodeNeighbor(p)
		if err != nil {
			return err
		}

		n.mu.Lock()
		if n.cursor == nil || *n.cursor != cur {
			// the viewer was closed or moved while the request was out
			n.mu.Unlock()
			return ErrNoCursor
		}
		n.cursor.Filename = next
		n.mu.Unlock()

		ref = n.ref(cur.CommentID, next)
		n.show(ref)
		return nil
	})
	if err != nil {
		if n.opts.Reporter != nil && !errors.Is(err, ErrNoCursor) {
			n.opts.Reporter.Report(req.Operation(), err)
		}
		return models.ImageRef{}, err
	}
	return ref, nil
}

// Close drops the cursor.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cursor = nil
}

func (n *Navigator) ref(commentID, filename string) models.ImageRef {
	return models.ImageRef{CommentID: commentID, Filename: filename, URL: n.opts.Paths.ImageURL(filename)}
}

func (n *Navigator) show(ref models.ImageRef) {
	if n.opts.View != nil {
		n.opts.View.ShowImage(ref)
	}
}
