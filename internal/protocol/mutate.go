package protocol

import (
	"fmt"

	"github.com/cookfile-viewer/backend/internal/models"
)

// MutateCommand is a request to the mutate endpoint.
type MutateCommand interface {
	Request
	mutateCommand()
}

// Mutate operation flags.
const (
	FlagMetadata    = "metadata"
	FlagGraphLabels = "graph_labels"
	FlagComments    = "comments"
	FlagMedia       = "media"
)

// Sub-operations of FlagComments.
const (
	CommentNew    = "commentnew"
	CommentEdit   = "editcomment"
	CommentSave   = "savecomment"
	CommentDelete = "delcomment"
)

var mutateFlags = []string{FlagMetadata, FlagGraphLabels, FlagComments, FlagMedia}

var commentOps = []string{CommentNew, CommentEdit, CommentSave, CommentDelete}

// EditTitle renames the session.
type EditTitle struct {
	Filename string
	Title    string
}

func (EditTitle) mutateCommand()    {}
func (EditTitle) Operation() string { return "edit_title" }
func (c EditTitle) Fields() map[string]any {
	return map[string]any{FlagMetadata: true, "filename": c.Filename, "editTitle": c.Title}
}

// SetGraphLabel renames one probe's channel pair.
type SetGraphLabel struct {
	Filename string
	Probe    models.Probe
	Label    string
}

func (SetGraphLabel) mutateCommand()    {}
func (SetGraphLabel) Operation() string { return "set_label" }
func (c SetGraphLabel) Fields() map[string]any {
	return map[string]any{FlagGraphLabels: true, "filename": c.Filename, c.Probe.LabelField(): c.Label}
}

// NewComment appends a comment.
type NewComment struct {
	Filename string
	Text     string
}

func (NewComment) mutateCommand()    {}
func (NewComment) Operation() string { return "comment_new" }
func (c NewComment) Fields() map[string]any {
	return map[string]any{FlagComments: true, "filename": c.Filename, CommentNew: c.Text}
}

// EditComment fetches the authoritative text of a comment before editing.
type EditComment struct {
	Filename  string
	CommentID string
}

func (EditComment) mutateCommand()    {}
func (EditComment) Operation() string { return "comment_edit" }
func (c EditComment) Fields() map[string]any {
	return map[string]any{FlagComments: true, "filename": c.Filename, CommentEdit: c.CommentID}
}

// SaveComment commits edited text.
type SaveComment struct {
	Filename  string
	CommentID string
	Text      string
}

func (SaveComment) mutateCommand()    {}
func (SaveComment) Operation() string { return "comment_save" }
func (c SaveComment) Fields() map[string]any {
	return map[string]any{FlagComments: true, "filename": c.Filename, CommentSave: c.CommentID, "text": c.Text}
}

// DeleteComment removes a comment.
type DeleteComment struct {
	Filename  string
	CommentID string
}

func (DeleteComment) mutateCommand()    {}
func (DeleteComment) Operation() string { return "comment_delete" }
func (c DeleteComment) Fields() map[string]any {
	return map[string]any{FlagComments: true, "filename": c.Filename, CommentDelete: c.CommentID}
}

// ToggleMedia flips an asset's attachment to a comment. State is the state
// currently displayed, not the desired one.
type ToggleMedia struct {
	Filename      string
	CommentID     string
	AssetFilename string
	State         models.SelectState
}

func (ToggleMedia) mutateCommand()    {}
func (ToggleMedia) Operation() string { return "media_toggle" }
func (c ToggleMedia) Fields() map[string]any {
	return map[string]any{
		FlagMedia:       true,
		"filename":      c.Filename,
		"commentid":     c.CommentID,
		"assetfilename": c.AssetFilename,
		"state":         string(c.State),
	}
}

// DecodeMutate decodes a flat mutate-endpoint object into its operation type.
func DecodeMutate(m map[string]any) (MutateCommand, error) {
	flag, err := exactlyOne(m, mutateFlags...)
	if err != nil {
		return nil, err
	}
	filename, err := requireString(m, "filename")
	if err != nil {
		return nil, err
	}

	switch flag {
	case FlagMetadata:
		title, err := optionalString(m, "editTitle")
		if err != nil {
			return nil, err
		}
		return EditTitle{Filename: filename, Title: title}, nil

	case FlagGraphLabels:
		fields := make([]string, len(models.Probes))
		for i, p := range models.Probes {
			fields[i] = p.LabelField()
		}
		field, err := exactlyOne(m, fields...)
		if err != nil {
			return nil, fmt.Errorf("graph_labels: %w", err)
		}
		label, err := optionalString(m, field)
		if err != nil {
			return nil, err
		}
		var probe models.Probe
		for _, p := range models.Probes {
			if p.LabelField() == field {
				probe = p
			}
		}
		return SetGraphLabel{Filename: filename, Probe: probe, Label: label}, nil

	case FlagComments:
		return decodeComment(m, filename)

	default: // FlagMedia
		cmd := ToggleMedia{Filename: filename}
		if cmd.CommentID, err = requireString(m, "commentid"); err != nil {
			return nil, err
		}
		if cmd.AssetFilename, err = requireString(m, "assetfilename"); err != nil {
			return nil, err
		}
		state, err := requireString(m, "state")
		if err != nil {
			return nil, err
		}
		if cmd.State, err = models.ParseSelectState(state); err != nil {
			return nil, err
		}
		return cmd, nil
	}
}

func decodeComment(m map[string]any, filename string) (MutateCommand, error) {
	op, err := exactlyOne(m, commentOps...)
	if err != nil {
		return nil, fmt.Errorf("comments: %w", err)
	}

	switch op {
	case CommentNew:
		text, err := optionalString(m, CommentNew)
		if err != nil {
			return nil, err
		}
		return NewComment{Filename: filename, Text: text}, nil
	case CommentEdit:
		id, err := requireString(m, CommentEdit)
		if err != nil {
			return nil, err
		}
		return EditComment{Filename: filename, CommentID: id}, nil
	case CommentSave:
		id, err := requireString(m, CommentSave)
		if err != nil {
			return nil, err
		}
		text, err := optionalString(m, "text")
		if err != nil {
			return nil, err
		}
		return SaveComment{Filename: filename, CommentID: id, Text: text}, nil
	default: // CommentDelete
		id, err := requireString(m, CommentDelete)
		if err != nil {
			return nil, err
		}
		return DeleteComment{Filename: filename, CommentID: id}, nil
	}
}
