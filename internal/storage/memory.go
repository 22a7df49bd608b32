// Package storage holds cook sessions for the reference endpoints.
package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cookfile-viewer/backend/internal/models"
)

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.CookSession
	failNext []string
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.CookSession),
		now:      time.Now,
	}
}

// SetClock replaces the clock used for comment timestamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailNext makes the next store operation fail with reason. Calls queue up.
func (s *MemoryStore) FailNext(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, reason)
}

// takeFailure pops a queued failure. Callers hold s.mu.
func (s *MemoryStore) takeFailure() error {
	if len(s.failNext) == 0 {
		return nil
	}
	reason := s.failNext[0]
	s.failNext = s.failNext[1:]
	return &Failure{Reason: reason}
}

func (s *MemoryStore) stamp() string {
	return s.now().Format(models.CommentTimeLayout)
}

// Put adds or replaces a session.
func (s *MemoryStore) Put(session models.CookSession) {
	c := cloneSession(session)
	if c.Labels == nil {
		c.Labels = make(map[models.Channel]string)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c.Filename] = &c
}

// Session returns a copy of the session stored under filename.
func (s *MemoryStore) Session(filename string) (models.CookSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return models.CookSession{}, err
	}
	cs, err := s.get(filename)
	if err != nil {
		return models.CookSession{}, err
	}
	return cloneSession(*cs), nil
}

// List returns the stored session filenames, sorted.
func (s *MemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.sessions))
	for name := range s.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetTitle renames a session.
func (s *MemoryStore) SetTitle(filename, title string) error {
	return s.update(filename, func(cs *models.CookSession) error {
		cs.Title = title
		return nil
	})
}

// SetProbeLabel stores label for the probe's temperature channel and
// label + " Set Point" for its set-point channel.
func (s *MemoryStore) SetProbeLabel(filename string, probe models.Probe, label string) error {
	if !probe.Valid() {
		return fmt.Errorf("unknown probe %q", probe)
	}
	return s.update(filename, func(cs *models.CookSession) error {
		temp, setpoint := probe.Channels()
		cs.Labels[temp] = label
		cs.Labels[setpoint] = label + models.SetpointSuffix
		return nil
	})
}

// AddComment appends a comment with a new id and the current timestamp.
func (s *MemoryStore) AddComment(filename, text string) (models.Comment, error) {
	var c models.Comment
	err := s.update(filename, func(cs *models.CookSession) error {
		c = models.Comment{ID: uuid.New().String(), DateTime: s.stamp(), Text: text}
		cs.Comments = append(cs.Comments, c)
		return nil
	})
	return c, err
}

// Comment returns a comment by id.
func (s *MemoryStore) Comment(filename, commentID string) (models.Comment, error) {
	var c models.Comment
	err := s.view(filename, func(cs *models.CookSession) error {
		found, err := findComment(cs, commentID)
		if err != nil {
			return err
		}
		c = cloneComment(*found)
		return nil
	})
	return c, err
}

// SaveComment replaces a comment's text and stamps it edited.
func (s *MemoryStore) SaveComment(filename, commentID, text string) (models.Comment, error) {
	var c models.Comment
	err := s.update(filename, func(cs *models.CookSession) error {
		found, err := findComment(cs, commentID)
		if err != nil {
			return err
		}
		found.Text = text
		found.Edited = s.stamp()
		c = cloneComment(*found)
		return nil
	})
	return c, err
}

// DeleteComment removes a comment.
func (s *MemoryStore) DeleteComment(filename, commentID string) error {
	return s.update(filename, func(cs *models.CookSession) error {
		for i := range cs.Comments {
			if cs.Comments[i].ID == commentID {
				cs.Comments = append(cs.Comments[:i], cs.Comments[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrCommentNotFound, commentID)
	})
}

// AllAssets returns the session's asset pool in upload order.
func (s *MemoryStore) AllAssets(filename string) ([]models.MediaAsset, error) {
	var out []models.MediaAsset
	err := s.view(filename, func(cs *models.CookSession) error {
		out = append([]models.MediaAsset{}, cs.Assets...)
		return nil
	})
	return out, err
}

// Candidates returns every asset of the pool with its state for commentID.
func (s *MemoryStore) Candidates(filename, commentID string) ([]models.MediaCandidate, error) {
	var out []models.MediaCandidate
	err := s.view(filename, func(cs *models.CookSession) error {
		c, err := findComment(cs, commentID)
		if err != nil {
			return err
		}
		out = make([]models.MediaCandidate, 0, len(cs.Assets))
		for _, a := range cs.Assets {
			state := models.SelectStateOf(indexOf(c.Assets, a.Filename) >= 0)
			out = append(out, models.MediaCandidate{MediaAsset: a, State: state})
		}
		return nil
	})
	return out, err
}

// ToggleAsset flips an attachment. current is the state the client had
// rendered: selected detaches the asset, unselected attaches it.
func (s *MemoryStore) ToggleAsset(filename, commentID, asset string, current models.SelectState) error {
	return s.update(filename, func(cs *models.CookSession) error {
		c, err := findComment(cs, commentID)
		if err != nil {
			return err
		}
		if !hasAsset(cs, asset) {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
		}
		i := indexOf(c.Assets, asset)
		switch current {
		case models.Selected:
			if i >= 0 {
				c.Assets = append(c.Assets[:i], c.Assets[i+1:]...)
			}
		case models.Unselected:
			if i < 0 {
				c.Assets = append(c.Assets, asset)
			}
		default:
			return fmt.Errorf("unknown select state %q", current)
		}
		return nil
	})
}

// CommentAssets returns the filenames attached to commentID, in attach order.
func (s *MemoryStore) CommentAssets(filename, commentID string) ([]string, error) {
	var out []string
	err := s.view(filename, func(cs *models.CookSession) error {
		c, err := findComment(cs, commentID)
		if err != nil {
			return err
		}
		out = append([]string{}, c.Assets...)
		return nil
	})
	return out, err
}

// Neighbor returns the attachment before or after asset on commentID,
// wrapping around at either end.
func (s *MemoryStore) Neighbor(filename, commentID, asset string, dir models.Direction) (string, error) {
	var out string
	err := s.view(filename, func(cs *models.CookSession) error {
		c, err := findComment(cs, commentID)
		if err != nil {
			return err
		}
		i := indexOf(c.Assets, asset)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotAttached, asset)
		}
		n := len(c.Assets)
		switch dir {
		case models.Next:
			out = c.Assets[(i+1)%n]
		case models.Prev:
			out = c.Assets[(i-1+n)%n]
		default:
			return fmt.Errorf("unknown direction %q", dir)
		}
		return nil
	})
	return out, err
}

func (s *MemoryStore) update(filename string, fn func(*models.CookSession) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	cs, err := s.get(filename)
	if err != nil {
		return err
	}
	return fn(cs)
}

// view runs fn under the write lock too, since a read may consume a queued failure.
func (s *MemoryStore) view(filename string, fn func(*models.CookSession) error) error {
	return s.update(filename, fn)
}

func (s *MemoryStore) get(filename string) (*models.CookSession, error) {
	cs, ok := s.sessions[filename]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, filename)
	}
	return cs, nil
}

func findComment(cs *models.CookSession, id string) (*models.Comment, error) {
	for i := range cs.Comments {
		if cs.Comments[i].ID == id {
			return &cs.Comments[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCommentNotFound, id)
}

func hasAsset(cs *models.CookSession, name string) bool {
	for _, a := range cs.Assets {
		if a.Filename == name {
			return true
		}
	}
	return false
}

func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return -1
}

func cloneComment(c models.Comment) models.Comment {
	c.Assets = append([]string(nil), c.Assets...)
	return c
}

func cloneSession(cs models.CookSession) models.CookSession {
	out := cs
	out.Labels = make(map[models.Channel]string, len(cs.Labels))
	for k, v := range cs.Labels {
		out.Labels[k] = v
	}
	out.TimeLabels = append([]any(nil), cs.TimeLabels...)
	out.Data = make(map[models.Channel][]any, len(cs.Data))
	for k, v := range cs.Data {
		out.Data[k] = append([]any(nil), v...)
	}
	out.Comments = make([]models.Comment, len(cs.Comments))
	for i, c := range cs.Comments {
		out.Comments[i] = cloneComment(c)
	}
	out.Assets = append([]models.MediaAsset(nil), cs.Assets...)
	return out
}
