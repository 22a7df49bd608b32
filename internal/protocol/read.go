package protocol

import (
	"github.com/cookfile-viewer/backend/internal/models"
)

// ReadRequest is a request to the read endpoint.
type ReadRequest interface {
	Request
	readRequest()
}

// Read operation flags.
const (
	FlagFullGraph          = "full_graph"
	FlagManageMediaComment = "managemediacomment"
	FlagGetAllMedia        = "getallmedia"
	FlagNavImage           = "navimage"
	FlagGetCommentAssets   = "getcommentassets"
)

var readFlags = []string{
	FlagFullGraph,
	FlagManageMediaComment,
	FlagGetAllMedia,
	FlagNavImage,
	FlagGetCommentAssets,
}

// FullGraph fetches the complete telemetry of a session.
type FullGraph struct {
	Filename string
}

func (FullGraph) readRequest()      {}
func (FullGraph) Operation() string { return FlagFullGraph }
func (r FullGraph) Fields() map[string]any {
	return map[string]any{FlagFullGraph: true, "filename": r.Filename}
}

// ManageMediaComment lists every asset with its selection state for one comment.
type ManageMediaComment struct {
	CookFilename string
	CommentID    string
}

func (ManageMediaComment) readRequest()      {}
func (ManageMediaComment) Operation() string { return FlagManageMediaComment }
func (r ManageMediaComment) Fields() map[string]any {
	return map[string]any{
		FlagManageMediaComment: true,
		"cookfilename":         r.CookFilename,
		"commentid":            r.CommentID,
	}
}

// GetAllMedia lists the session's asset pool.
type GetAllMedia struct {
	CookFilename string
}

func (GetAllMedia) readRequest()      {}
func (GetAllMedia) Operation() string { return FlagGetAllMedia }
func (r GetAllMedia) Fields() map[string]any {
	return map[string]any{FlagGetAllMedia: true, "cookfilename": r.CookFilename}
}

// NavImage asks for the neighbor of an asset within a comment's attachments.
type NavImage struct {
	Direction     models.Direction
	MediaFilename string
	CommentID     string
	CookFilename  string
}

func (NavImage) readRequest()      {}
func (NavImage) Operation() string { return FlagNavImage }
func (r NavImage) Fields() map[string]any {
	return map[string]any{
		FlagNavImage:    string(r.Direction),
		"mediafilename": r.MediaFilename,
		"commentid":     r.CommentID,
		"cookfilename":  r.CookFilename,
	}
}

// GetCommentAssets lists the filenames attached to a comment.
type GetCommentAssets struct {
	CommentID    string
	CookFilename string
}

func (GetCommentAssets) readRequest()      {}
func (GetCommentAssets) Operation() string { return FlagGetCommentAssets }
func (r GetCommentAssets) Fields() map[string]any {
	return map[string]any{
		FlagGetCommentAssets: true,
		"commentid":          r.CommentID,
		"cookfilename":       r.CookFilename,
	}
}

// DecodeRead decodes a flat read-endpoint object into its operation type.
func DecodeRead(m map[string]any) (ReadRequest, error) {
	flag, err := exactlyOne(m, readFlags...)
	if err != nil {
		return nil, err
	}

	switch flag {
	case FlagFullGraph:
		filename, err := requireString(m, "filename")
		if err != nil {
			return nil, err
		}
		return FullGraph{Filename: filename}, nil

	case FlagManageMediaComment:
		cook, err := requireString(m, "cookfilename")
		if err != nil {
			return nil, err
		}
		comment, err := requireString(m, "commentid")
		if err != nil {
			return nil, err
		}
		return ManageMediaComment{CookFilename: cook, CommentID: comment}, nil

	case FlagGetAllMedia:
		cook, err := requireString(m, "cookfilename")
		if err != nil {
			return nil, err
		}
		return GetAllMedia{CookFilename: cook}, nil

	case FlagNavImage:
		dirRaw, err := requireString(m, FlagNavImage)
		if err != nil {
			return nil, err
		}
		dir, err := models.ParseDirection(dirRaw)
		if err != nil {
			return nil, err
		}
		req := NavImage{Direction: dir}
		if req.MediaFilename, err = requireString(m, "mediafilename"); err != nil {
			return nil, err
		}
		if req.CommentID, err = requireString(m, "commentid"); err != nil {
			return nil, err
		}
		if req.CookFilename, err = requireString(m, "cookfilename"); err != nil {
			return nil, err
		}
		return req, nil

	default: // FlagGetCommentAssets
		comment, err := requireString(m, "commentid")
		if err != nil {
			return nil, err
		}
		cook, err := requireString(m, "cookfilename")
		if err != nil {
			return nil, err
		}
		return GetCommentAssets{CommentID: comment, CookFilename: cook}, nil
	}
}
