// Package comments keeps the comment entries of a session in step with the
// store. Every change is applied only after the store acknowledges it.
package comments

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cookfile-viewer/backend/internal/inflight"
	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/notify"
	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/remote"
)

var (
	// ErrUnknownComment is returned for ids the ledger does not hold.
	ErrUnknownComment = errors.New("unknown comment")
	// ErrNotEditing is returned when committing a comment that is not in edit mode.
	ErrNotEditing = errors.New("comment is not being edited")
)

// View is the comment area of the page.
type View interface {
	// InsertCard adds a card for c after the existing cards.
	InsertCard(c models.Comment)
	// ClearInput empties the new-comment input.
	ClearInput()
	// ShowEditor replaces the body of id with an editor seeded with text.
	ShowEditor(id, text string)
	// ShowBody replaces the body of id with text and shows the edit button.
	ShowBody(id, text string)
	SetHeader(id string, h models.CommentHeader)
	RemoveCard(id string)
}

// Entry is a comment with its local view mode.
type Entry struct {
	models.Comment
	Mode  models.CommentMode
	Draft string // editor text while Mode is CommentEditing
}

// Options configures a Ledger.
type Options struct {
	Filename string
	Store    remote.Store
	View     View
	Guard    *inflight.Guard
	Reporter notify.Reporter
}

// Ledger is the in-memory list of a session's comments.
type Ledger struct {
	mu       sync.RWMutex
	filename string
	store    remote.Store
	view     View
	guard    *inflight.Guard
	reporter notify.Reporter
	entries  map[string]*Entry
	order    []string
	deleted  map[string]bool
}

// NewLedger creates an empty ledger.
func NewLedger(opts Options) *Ledger {
	l := &Ledger{
		filename: opts.Filename,
		store:    opts.Store,
		view:     opts.View,
		guard:    opts.Guard,
		reporter: opts.Reporter,
		entries:  make(map[string]*Entry),
		deleted:  make(map[string]bool),
	}
	if l.guard == nil {
		l.guard = inflight.NewGuard()
	}
	if l.view == nil {
		l.view = NopView{}
	}
	return l
}

// Seed loads the comments the page was opened with. Existing entries with
// the same id are replaced.
func (l *Ledger) Seed(list []models.Comment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range list {
		if _, ok := l.entries[c.ID]; !ok {
			l.order = append(l.order, c.ID)
		}
		l.entries[c.ID] = &Entry{Comment: c, Mode: models.CommentViewing}
		delete(l.deleted, c.ID)
	}
}

// Len returns the number of live entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Get returns a copy of the entry for id.
func (l *Ledger) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Mode returns the view mode of id. Ids removed by Delete report
// CommentDeleted.
func (l *Ledger) Mode(id string) (models.CommentMode, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[id]; ok {
		return e.Mode, true
	}
	if l.deleted[id] {
		return models.CommentDeleted, true
	}
	return "", false
}

// List returns copies of all entries in creation order.
func (l *Ledger) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.entries[id])
	}
	return out
}

// Create adds a comment with text. The entry is appended and the input
// cleared only after the store returns the new id.
func (l *Ledger) Create(ctx context.Context, text string) (models.Comment, error) {
	cmd := protocol.NewComment{Filename: l.filename, Text: text}

	var created models.Comment
	err := l.guard.Do(inflight.Key{Entity: l.filename, Op: cmd.Operation()}, func() error {
		p, err := l.store.Mutate(ctx, cmd)
		if err != nil {
			return err
		}
		ack, err := protocol.DecodeCommentCreated(p)
		if err != nil {
			return err
		}
		created = models.Comment{ID: ack.ID, DateTime: ack.DateTime, Text: text}

		l.mu.Lock()
		if _, exists := l.entries[created.ID]; !exists {
			l.order = append(l.order, created.ID)
		}
		l.entries[created.ID] = &Entry{Comment: created, Mode: models.CommentViewing}
		l.mu.Unlock()

		l.view.InsertCard(created)
		l.view.ClearInput()
		return nil
	})
	if err != nil {
		l.report(cmd.Operation(), err)
		return models.Comment{}, err
	}
	return created, nil
}

// EnterEdit fetches the current text of id from the store and switches the
// entry to edit mode seeded with it.
func (l *Ledger) EnterEdit(ctx context.Context, id string) (string, error) {
	cmd := protocol.EditComment{Filename: l.filename, CommentID: id}

	var text string
	err := l.guard.Do(inflight.Key{Entity: id, Op: cmd.Operation()}, func() error {
		if _, ok := l.Get(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownComment, id)
		}
		p, err := l.store.Mutate(ctx, cmd)
		if err != nil {
			return err
		}
		if text, err = protocol.DecodeCommentText(p); err != nil {
			return err
		}

		l.mu.Lock()
		e, ok := l.entries[id]
		if ok {
			e.Mode = models.CommentEditing
			e.Draft = text
		}
		l.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownComment, id)
		}

		l.view.ShowEditor(id, text)
		return nil
	})
	if err != nil {
		l.report(cmd.Operation(), err)
		return "", err
	}
	return text, nil
}

// CommitEdit sends the edited text of id. On success the entry shows the
// confirmed text and edited timestamp and returns to view mode; on failure it
// stays in edit mode with text kept as the draft.
func (l *Ledger) CommitEdit(ctx context.Context, id, text string) (models.Comment, error) {
	cmd := protocol.SaveComment{Filename: l.filename, CommentID: id, Text: text}

	var saved models.Comment
	err := l.guard.Do(inflight.Key{Entity: id, Op: cmd.Operation()}, func() error {
		l.mu.Lock()
		e, ok := l.entries[id]
		switch {
		case !ok:
			l.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownComment, id)
		case e.Mode != models.CommentEditing:
			l.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrNotEditing, id)
		}
		e.Draft = text
		l.mu.Unlock()

		p, err := l.store.Mutate(ctx, cmd)
		if err != nil {
			return err
		}
		ack, err := protocol.DecodeCommentSaved(p)
		if err != nil {
			return err
		}

		l.mu.Lock()
		e, ok = l.entries[id]
		if ok {
			e.Text = ack.Text
			if ack.DateTime != "" {
				e.DateTime = ack.DateTime
			}
			e.Edited = ack.Edited
			e.Mode = models.CommentViewing
			e.Draft = ""
			saved = e.Comment
		}
		l.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownComment, id)
		}

		l.view.ShowBody(id, saved.Text)
		l.view.SetHeader(id, saved.Header())
		return nil
	})
	if err != nil {
		l.report(cmd.Operation(), err)
		return models.Comment{}, err
	}
	return saved, nil
}

// Delete removes id once the store confirms.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	cmd := protocol.DeleteComment{Filename: l.filename, CommentID: id}

	err := l.guard.Do(inflight.Key{Entity: id, Op: cmd.Operation()}, func() error {
		if _, ok := l.Get(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownComment, id)
		}
		if _, err := l.store.Mutate(ctx, cmd); err != nil {
			return err
		}

		l.mu.Lock()
		delete(l.entries, id)
		l.deleted[id] = true
		for i, oid := range l.order {
			if oid == id {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
		l.mu.Unlock()

		l.view.RemoveCard(id)
		return nil
	})
	if err != nil {
		l.report(cmd.Operation(), err)
	}
	return err
}

// SetAssets records the confirmed attachment list of id.
func (l *Ledger) SetAssets(id string, assets []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[id]; ok {
		e.Assets = append([]string(nil), assets...)
	}
}

func (l *Ledger) report(op string, err error) {
	if l.reporter != nil {
		l.reporter.Report(op, err)
	}
}

// NopView discards every view update.
type NopView struct{}

func (NopView) InsertCard(models.Comment)              {}
func (NopView) ClearInput()                            {}
func (NopView) ShowEditor(string, string)              {}
func (NopView) ShowBody(string, string)                {}
func (NopView) SetHeader(string, models.CommentHeader) {}
func (NopView) RemoveCard(string)                      {}
