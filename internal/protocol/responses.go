package protocol

import (
	"fmt"

	"github.com/cookfile-viewer/backend/internal/models"
)

// CommentCreated is the acknowledgement of NewComment.
type CommentCreated struct {
	ID       string
	DateTime string
}

// CommentSaved is the acknowledgement of SaveComment.
type CommentSaved struct {
	Text     string
	DateTime string
	Edited   string
}

func malformed(op, field string) error {
	return fmt.Errorf("%s response: %w", op, missing(field))
}

// DecodeCommentCreated reads the new comment's id and timestamp.
func DecodeCommentCreated(p Payload) (CommentCreated, error) {
	id, ok := p.String("newcommentid")
	if !ok || id == "" {
		return CommentCreated{}, malformed(CommentNew, "newcommentid")
	}
	dt, _ := p.String("newcommentdt")
	return CommentCreated{ID: id, DateTime: dt}, nil
}

// DecodeCommentText reads the authoritative text returned by EditComment.
func DecodeCommentText(p Payload) (string, error) {
	text, ok := p.String("text")
	if !ok && !p.Has("text") {
		return "", malformed(CommentEdit, "text")
	}
	return text, nil
}

// DecodeCommentSaved reads the confirmed text and timestamps of SaveComment.
func DecodeCommentSaved(p Payload) (CommentSaved, error) {
	if !p.Has("text") {
		return CommentSaved{}, malformed(CommentSave, "text")
	}
	text, _ := p.String("text")
	dt, _ := p.String("datetime")
	edited, _ := p.String("edited")
	return CommentSaved{Text: text, DateTime: dt, Edited: edited}, nil
}

// DecodeCandidates reads a managemediacomment asset list.
func DecodeCandidates(p Payload) ([]models.MediaCandidate, error) {
	list, ok := p.List("assetlist")
	if !ok {
		return nil, malformed(FlagManageMediaComment, "assetlist")
	}
	out := make([]models.MediaCandidate, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		asset := assetFrom(Payload(m))
		selected, _ := m["selected"].(bool)
		out = append(out, models.MediaCandidate{MediaAsset: asset, State: models.SelectStateOf(selected)})
	}
	return out, nil
}

// DecodeAssets reads a getallmedia asset list.
func DecodeAssets(p Payload) ([]models.MediaAsset, error) {
	list, ok := p.List("assetlist")
	if !ok {
		return nil, malformed(FlagGetAllMedia, "assetlist")
	}
	out := make([]models.MediaAsset, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, assetFrom(Payload(m)))
		}
	}
	return out, nil
}

// DecodeCommentAssets reads a getcommentassets filename list.
func DecodeCommentAssets(p Payload) ([]string, error) {
	list, ok := p.List("assetlist")
	if !ok {
		return nil, malformed(FlagGetCommentAssets, "assetlist")
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// DecodeNeighbor reads the filename returned by NavImage.
func DecodeNeighbor(p Payload) (string, error) {
	name, ok := p.String("mediafilename")
	if !ok || name == "" {
		return "", malformed(FlagNavImage, "mediafilename")
	}
	return name, nil
}

func assetFrom(p Payload) models.MediaAsset {
	id, _ := p.String("assetid")
	name, _ := p.String("assetname")
	return models.MediaAsset{ID: id, Filename: name}
}

// CandidatesPayload encodes a managemediacomment asset list.
func CandidatesPayload(list []models.MediaCandidate) []any {
	out := make([]any, len(list))
	for i, c := range list {
		out[i] = map[string]any{"assetid": c.ID, "assetname": c.Filename, "selected": c.State.Bool()}
	}
	return out
}

// AssetsPayload encodes a getallmedia asset list.
func AssetsPayload(list []models.MediaAsset) []any {
	out := make([]any, len(list))
	for i, a := range list {
		out[i] = map[string]any{"assetid": a.ID, "assetname": a.Filename}
	}
	return out
}

// FilenamesPayload encodes a getcommentassets filename list.
func FilenamesPayload(list []string) []any {
	out := make([]any, len(list))
	for i, name := range list {
		out[i] = name
	}
	return out
}
