// views.go - Recording page collaborators for testing
package testutil

import (
	"sync"

	"github.com/cookfile-viewer/backend/internal/models"
)

// Event is one call a component made on the page.
type Event struct {
	Kind  string
	ID    string
	Value any
}

// Page records every view call. It implements the comment, selection,
// removal, viewer, label and notifier views.
type Page struct {
	mu     sync.Mutex
	events []Event
}

// NewPage creates an empty recorder.
func NewPage() *Page {
	return &Page{}
}

func (p *Page) record(kind, id string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Kind: kind, ID: id, Value: value})
}

// Events returns every recorded call in order.
func (p *Page) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Kinds returns the kinds of every recorded call in order.
func (p *Page) Kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

// Last returns the most recent event of kind.
func (p *Page) Last(kind string) (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Kind == kind {
			return p.events[i], true
		}
	}
	return Event{}, false
}

// Count returns how many events of kind were recorded.
func (p *Page) Count(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets every recorded event.
func (p *Page) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// Comment view.

func (p *Page) InsertCard(c models.Comment) { p.record("insert_card", c.ID, c) }
func (p *Page) ClearInput()                 { p.record("clear_input", "", nil) }
func (p *Page) ShowEditor(id, text string)  { p.record("show_editor", id, text) }
func (p *Page) ShowBody(id, text string)    { p.record("show_body", id, text) }
func (p *Page) RemoveCard(id string)        { p.record("remove_card", id, nil) }
func (p *Page) SetHeader(id string, h models.CommentHeader) {
	p.record("set_header", id, h)
}

// Selection view.

func (p *Page) ShowCandidates(commentID string, list []models.MediaCandidate) {
	p.record("show_candidates", commentID, append([]models.MediaCandidate(nil), list...))
}

func (p *Page) SetSelected(commentID, filename string, state models.SelectState) {
	p.record("set_selected", commentID+"/"+filename, state)
}

func (p *Page) SetThumbnails(commentID string, refs []models.ImageRef) {
	p.record("set_thumbnails", commentID, append([]models.ImageRef(nil), refs...))
}

// Removal sink.

func (p *Page) SetRemovalList(list []string) {
	p.record("removal_list", "", append([]string{}, list...))
}

// Viewer view.

func (p *Page) ShowImage(ref models.ImageRef) { p.record("show_image", ref.CommentID, ref) }

// Label view.

func (p *Page) Confirm(field string) { p.record("confirm", field, nil) }

// Notifier.

func (p *Page) Notify(message string) { p.record("notify", "", message) }

// Notices returns every user notice shown.
func (p *Page) Notices() []string {
	var out []string
	for _, e := range p.Events() {
		if e.Kind == "notify" {
			out = append(out, e.Value.(string))
		}
	}
	return out
}

// RemovalLists returns every list pushed to the removal sink.
func (p *Page) RemovalLists() [][]string {
	var out [][]string
	for _, e := range p.Events() {
		if e.Kind == "removal_list" {
			out = append(out, e.Value.([]string))
		}
	}
	return out
}

// SelectedStates returns every state rendered for filename on commentID.
func (p *Page) SelectedStates(commentID, filename string) []models.SelectState {
	var out []models.SelectState
	for _, e := range p.Events() {
		if e.Kind == "set_selected" && e.ID == commentID+"/"+filename {
			out = append(out, e.Value.(models.SelectState))
		}
	}
	return out
}

// Report is one failure passed to a Reporter.
type Report struct {
	Op  string
	Err error
}

// Reporter records reported failures.
type Reporter struct {
	mu      sync.Mutex
	reports []Report
}

// Report implements notify.Reporter.
func (r *Reporter) Report(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Op: op, Err: err})
}

// Reports returns every recorded failure in order.
func (r *Reporter) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.reports...)
}
