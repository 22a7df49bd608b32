package models

// CommentMode is the local view mode of a comment entry.
type CommentMode string

const (
	CommentViewing CommentMode = "viewing"
	CommentEditing CommentMode = "editing"
	CommentDeleted CommentMode = "deleted"
)

// CommentTimeLayout is the timestamp format the session store issues.
const CommentTimeLayout = "2006-01-02 15:04:05"

// Comment is a user comment attached to a cook session.
type Comment struct {
	ID       string   `json:"id" yaml:"id"`
	DateTime string   `json:"datetime" yaml:"datetime"`
	Edited   string   `json:"edited,omitempty" yaml:"edited,omitempty"`
	Text     string   `json:"text" yaml:"text"`
	Assets   []string `json:"assets,omitempty" yaml:"assets,omitempty"`
}

// IsEdited reports whether the comment carries an edited timestamp.
func (c Comment) IsEdited() bool { return c.Edited != "" }

// CommentHeader is what a comment card shows above its body.
type CommentHeader struct {
	DateTime string
	Edited   string // empty when never edited
}

// Header returns the header for the comment's current state.
func (c Comment) Header() CommentHeader {
	return CommentHeader{DateTime: c.DateTime, Edited: c.Edited}
}

// Badge renders the edited badge text, or "" when the comment was never edited.
func (h CommentHeader) Badge() string {
	if h.Edited == "" {
		return ""
	}
	return "Edited " + h.Edited
}
