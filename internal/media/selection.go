// Package media tracks a session's media state: which assets are attached
// to each comment, which are marked for bulk removal, and which image an
// open viewer shows.
package media

import (
	"context"
	"errors"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/cookfile-viewer/backend/internal/inflight"
	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/notify"
	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/remote"
)

// ErrUnknownAsset is returned for a filename that is not in the asset pool.
var ErrUnknownAsset = errors.New("unknown asset")

// SelectionView is the attach-media dialog and the per-comment thumbnail strip.
type SelectionView interface {
	ShowCandidates(commentID string, list []models.MediaCandidate)
	SetSelected(commentID, filename string, state models.SelectState)
	SetThumbnails(commentID string, thumbs []models.ImageRef)
}

// SelectionOptions configures a SelectionManager.
type SelectionOptions struct {
	Filename string
	Store    remote.Store
	View     SelectionView
	Guard    *inflight.Guard
	Reporter notify.Reporter
	Paths    models.MediaPaths
	Logger   *log.Logger

	// Verify reads the store's selection state back after each toggle.
	Verify bool
	// OnAssets receives a comment's confirmed attachment list after each refresh.
	OnAssets func(commentID string, assets []string)
}

// SelectionManager toggles asset attachments per comment.
type SelectionManager struct {
	opts   SelectionOptions
	mu     sync.RWMutex
	states map[string]map[string]models.SelectState // comment id -> filename -> rendered state
}

// NewSelectionManager creates a manager from opts.
func NewSelectionManager(opts SelectionOptions) *SelectionManager {
	if opts.Guard == nil {
		opts.Guard = inflight.NewGuard()
	}
	if opts.View == nil {
		opts.View = NopSelectionView{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New("media")
		opts.Logger.SetLevel(log.OFF)
	}
	return &SelectionManager{opts: opts, states: make(map[string]map[string]models.SelectState)}
}

// LoadCandidates fetches every asset with its selection state for commentID
// and shows them.
func (m *SelectionManager) LoadCandidates(ctx context.Context, commentID string) ([]models.MediaCandidate, error) {
	req := protocol.ManageMediaComment{CookFilename: m.opts.Filename, CommentID: commentID}
	list, err := m.fetchCandidates(ctx, req)
	if err != nil {
		m.report(req.Operation(), err)
		return nil, err
	}

	states := make(map[string]models.SelectState, len(list))
	for _, c := range list {
		states[c.Filename] = c.State
	}
	m.mu.Lock()
	m.states[commentID] = states
	m.mu.Unlock()

	m.opts.View.ShowCandidates(commentID, list)
	return list, nil
}

func (m *SelectionManager) fetchCandidates(ctx context.Context, req protocol.ManageMediaComment) ([]models.MediaCandidate, error) {
	p, err := m.opts.Store.Read(ctx, req)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeCandidates(p)
}

// State returns the rendered state of filename for commentID.
func (m *SelectionManager) State(commentID, filename string) (models.SelectState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[commentID][filename]
	return s, ok
}

// Toggle flips the attachment of filename to commentID. current is the state
// the user sees and is what the store receives. The flipped state is shown
// only once the store acknowledges the toggle; on a fault nothing is
// rendered. After an acknowledged toggle the thumbnail strip is rebuilt from
// the store.
func (m *SelectionManager) Toggle(ctx context.Context, commentID, filename string, current models.SelectState) (models.SelectState, error) {
	cmd := protocol.ToggleMedia{
		Filename:      m.opts.Filename,
		CommentID:     commentID,
		AssetFilename: filename,
		State:         current,
	}
	key := inflight.Key{Entity: commentID + "/" + filename, Op: cmd.Operation()}

	result := current
	err := m.opts.Guard.Do(key, func() error {
		if _, err := m.opts.Store.Mutate(ctx, cmd); err != nil {
			return err
		}
		next := current.Flip()
		m.render(commentID, filename, next)
		result = next

		if m.opts.Verify {
			result = m.verify(ctx, commentID, filename, next)
		}
		return nil
	})
	if err != nil {
		m.report(cmd.Operation(), err)
		return current, err
	}

	if _, err := m.RefreshThumbnails(ctx, commentID); err != nil {
		m.opts.Logger.Warnf("[Media] thumbnails of %s not refreshed after toggle: %v", commentID, err)
	}
	return result, nil
}

// verify reads the store's state for filename and corrects the rendered
// state when it differs from what was assumed.
func (m *SelectionManager) verify(ctx context.Context, commentID, filename string, assumed models.SelectState) models.SelectState {
	list, err := m.fetchCandidates(ctx, protocol.ManageMediaComment{CookFilename: m.opts.Filename, CommentID: commentID})
	if err != nil {
		m.opts.Logger.Warnf("[Media] could not verify %s on %s: %v", filename, commentID, err)
		return assumed
	}
	for _, c := range list {
		if c.Filename != filename {
			continue
		}
		if c.State != assumed {
			m.opts.Logger.Infof("[Media] store reports %s for %s on %s, correcting", c.State, filename, commentID)
			m.render(commentID, filename, c.State)
		}
		return c.State
	}
	return assumed
}

func (m *SelectionManager) render(commentID, filename string, state models.SelectState) {
	m.mu.Lock()
	states, ok := m.states[commentID]
	if !ok {
		states = make(map[string]models.SelectState)
		m.states[commentID] = states
	}
	states[filename] = state
	m.mu.Unlock()

	m.opts.View.SetSelected(commentID, filename, state)
}

// RefreshThumbnails rebuilds the thumbnail strip of commentID from the
// store's attachment list.
func (m *SelectionManager) RefreshThumbnails(ctx context.Context, commentID string) ([]string, error) {
	req := protocol.GetCommentAssets{CommentID: commentID, CookFilename: m.opts.Filename}
	assets, err := m.fetchCommentAssets(ctx, req)
	if err != nil {
		m.report(req.Operation(), err)
		return nil, err
	}

	thumbs := make([]models.ImageRef, len(assets))
	for i, name := range assets {
		thumbs[i] = models.ImageRef{CommentID: commentID, Filename: name, URL: m.opts.Paths.ThumbURL(name)}
	}
	m.opts.View.SetThumbnails(commentID, thumbs)
	if m.opts.OnAssets != nil {
		m.opts.OnAssets(commentID, assets)
	}
	return assets, nil
}

func (m *SelectionManager) fetchCommentAssets(ctx context.Context, req protocol.GetCommentAssets) ([]string, error) {
	p, err := m.opts.Store.Read(ctx, req)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeCommentAssets(p)
}

// Forget drops the rendered states of every comment.
func (m *SelectionManager) Forget() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = make(map[string]map[string]models.SelectState)
}

func (m *SelectionManager) report(op string, err error) {
	if m.opts.Reporter != nil {
		m.opts.Reporter.Report(op, err)
	}
}

// NopSelectionView discards every view update.
type NopSelectionView struct{}

func (NopSelectionView) ShowCandidates(string, []models.MediaCandidate) {}
func (NopSelectionView) SetSelected(string, string, models.SelectState) {}
func (NopSelectionView) SetThumbnails(string, []models.ImageRef)        {}
