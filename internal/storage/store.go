package storage

import (
	"errors"

	"github.com/cookfile-viewer/backend/internal/models"
)

var (
	ErrSessionNotFound = errors.New("cook session not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrNotAttached     = errors.New("asset is not attached to comment")
)

// Failure is an injected store failure. Handlers answer it with its reason
// as the result marker.
type Failure struct {
	Reason string
}

func (f *Failure) Error() string { return "store failure: " + f.Reason }

// Store defines the session operations the reference endpoints need.
type Store interface {
	Put(s models.CookSession)
	Session(filename string) (models.CookSession, error)
	List() []string

	SetTitle(filename, title string) error
	SetProbeLabel(filename string, probe models.Probe, label string) error

	AddComment(filename, text string) (models.Comment, error)
	Comment(filename, commentID string) (models.Comment, error)
	SaveComment(filename, commentID, text string) (models.Comment, error)
	DeleteComment(filename, commentID string) error

	AllAssets(filename string) ([]models.MediaAsset, error)
	Candidates(filename, commentID string) ([]models.MediaCandidate, error)
	ToggleAsset(filename, commentID, asset string, current models.SelectState) error
	CommentAssets(filename, commentID string) ([]string, error)
	Neighbor(filename, commentID, asset string, dir models.Direction) (string, error)
}
