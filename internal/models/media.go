package models

import "fmt"

// SelectState is the attachment state of an asset for one comment.
type SelectState string

const (
	Selected   SelectState = "selected"
	Unselected SelectState = "unselected"
)

// Flip returns the opposite state.
func (s SelectState) Flip() SelectState {
	if s == Selected {
		return Unselected
	}
	return Selected
}

// Bool reports whether the state is Selected.
func (s SelectState) Bool() bool { return s == Selected }

// Class is the thumbnail style used to render the state.
func (s SelectState) Class() string {
	if s == Selected {
		return "border rounded shadow"
	}
	return "rounded"
}

// SelectStateOf converts a selection flag to a SelectState.
func SelectStateOf(selected bool) SelectState {
	if selected {
		return Selected
	}
	return Unselected
}

// ParseSelectState parses the wire form of a selection state.
func ParseSelectState(s string) (SelectState, error) {
	switch SelectState(s) {
	case Selected, Unselected:
		return SelectState(s), nil
	}
	return "", fmt.Errorf("invalid select state %q", s)
}

// MediaAsset is a file in the session's media pool.
type MediaAsset struct {
	ID       string `json:"assetid" yaml:"id"`
	Filename string `json:"assetname" yaml:"filename"`
}

// MediaCandidate is an asset as offered for attachment to a comment.
type MediaCandidate struct {
	MediaAsset
	State SelectState `json:"state"`
}

// Direction is a carousel step.
type Direction string

const (
	Prev Direction = "prev"
	Next Direction = "next"
)

// ParseDirection parses "prev" or "next".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Prev, Next:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// MediaPaths builds URLs for the session's media files.
type MediaPaths struct {
	ImagePath  string // e.g. "/static/img/cookfile/"
	CookfileID string
}

// ImageURL returns the full-size image URL of filename.
func (p MediaPaths) ImageURL(filename string) string {
	return p.ImagePath + p.CookfileID + "/" + filename
}

// ThumbURL returns the thumbnail URL of filename.
func (p MediaPaths) ThumbURL(filename string) string {
	return p.ImagePath + p.CookfileID + "/thumbs/" + filename
}

// ImageRef is what an image viewer displays.
type ImageRef struct {
	CommentID string
	Filename  string
	URL       string
}
