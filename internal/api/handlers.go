package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/storage"
)

// MIMEMsgpack is the content type of msgpack-encoded read responses.
const MIMEMsgpack = "application/msgpack"

// Handler serves the cook session read and mutate endpoints.
type Handler struct {
	store  storage.Store
	logger *log.Logger
}

// NewHandler creates a new API handler.
func NewHandler(store storage.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New("api")
		logger.SetLevel(log.OFF)
	}
	return &Handler{store: store, logger: logger}
}

// HandleRead answers the read endpoint. Responses are msgpack when the
// request accepts it, JSON otherwise.
func (h *Handler) HandleRead(c echo.Context) error {
	fields, err := bindFields(c)
	if err != nil {
		return err
	}
	req, err := protocol.DecodeRead(fields)
	if err != nil {
		return NewBadRequestError("invalid read request", err)
	}

	out, err := h.read(req)
	if err != nil {
		return h.fail(c, req.Operation(), err)
	}
	h.logger.Debugf("[API] read %s ok", req.Operation())

	if acceptsMsgpack(c) {
		data, err := msgpack.Marshal(map[string]any(out))
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, MIMEMsgpack, data)
	}
	return c.JSON(http.StatusOK, out)
}

// HandleMutate answers the mutate endpoint.
func (h *Handler) HandleMutate(c echo.Context) error {
	fields, err := bindFields(c)
	if err != nil {
		return err
	}
	cmd, err := protocol.DecodeMutate(fields)
	if err != nil {
		return NewBadRequestError("invalid mutate request", err)
	}

	out, err := h.mutate(cmd)
	if err != nil {
		return h.fail(c, cmd.Operation(), err)
	}
	h.logger.Debugf("[API] mutate %s ok", cmd.Operation())
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) read(req protocol.ReadRequest) (protocol.Payload, error) {
	switch r := req.(type) {
	case protocol.FullGraph:
		cs, err := h.store.Session(r.Filename)
		if err != nil {
			return nil, err
		}
		return graphPayload(cs), nil

	case protocol.ManageMediaComment:
		list, err := h.store.Candidates(r.CookFilename, r.CommentID)
		if err != nil {
			return nil, err
		}
		return protocol.OK(map[string]any{"assetlist": protocol.CandidatesPayload(list)}), nil

	case protocol.GetAllMedia:
		list, err := h.store.AllAssets(r.CookFilename)
		if err != nil {
			return nil, err
		}
		return protocol.OK(map[string]any{"assetlist": protocol.AssetsPayload(list)}), nil

	case protocol.NavImage:
		name, err := h.store.Neighbor(r.CookFilename, r.CommentID, r.MediaFilename, r.Direction)
		if err != nil {
			return nil, err
		}
		return protocol.OK(map[string]any{"mediafilename": name}), nil

	case protocol.GetCommentAssets:
		list, err := h.store.CommentAssets(r.CookFilename, r.CommentID)
		if err != nil {
			return nil, err
		}
		return protocol.OK(map[string]any{"assetlist": protocol.FilenamesPayload(list)}), nil
	}
	return nil, NewBadRequestError("unsupported read operation", nil)
}

func (h *Handler) mutate(cmd protocol.MutateCommand) (protocol.Payload, error) {
	switch m := cmd.(type) {
	case protocol.EditTitle:
		return protocol.OK(nil), h.store.SetTitle(m.Filename, m.Title)

	case protocol.SetGraphLabel:
		return protocol.OK(nil), h.store.SetProbeLabel(m.Filename, m.Probe, m.Label)

	case protocol.NewComment:
		c, err := h.store.AddComment(m.Filename, m.Text)
		if err != nil {
			return nil, err
		}
		return protocol.OK(map[string]any{"newcommentid": c.ID, "newcommentdt": c.DateTime}), nil

	case protocol.EditComment:
		c, err := h.store.Comment(m.Filename, m.CommentID)
		if err != nil {
			return nil, err
		}
		return protocol.OK(map[string]any{"text": c.Text}), nil

	case protocol.SaveComment:
		c, err := h.store.SaveComment(m.Filename, m.CommentID, m.Text)
		if err != nil {
			return nil, err
		}
		return protocol.OK(map[string]any{"text": c.Text, "datetime": c.DateTime, "edited": c.Edited}), nil

	case protocol.DeleteComment:
		return protocol.OK(nil), h.store.DeleteComment(m.Filename, m.CommentID)

	case protocol.ToggleMedia:
		return protocol.OK(nil), h.store.ToggleAsset(m.Filename, m.CommentID, m.AssetFilename, m.State)
	}
	return nil, NewBadRequestError("unsupported mutate operation", nil)
}

// fail answers an injected store failure with its reason as the result
// marker and hands every other error to the error handler.
func (h *Handler) fail(c echo.Context, op string, err error) error {
	var failure *storage.Failure
	if errors.As(err, &failure) {
		h.logger.Warnf("[API] %s failed: %s", op, failure.Reason)
		return c.JSON(http.StatusOK, protocol.Failure(failure.Reason))
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	h.logger.Warnf("[API] %s failed: %v", op, err)
	return storeError(err)
}

// graphPayload renders a session as a full_graph response. Channels without
// a stored label carry their default.
func graphPayload(cs models.CookSession) protocol.Payload {
	fields := map[string]any{
		"time_labels": nonNil(cs.TimeLabels),
		"annotations": cs.Annotations,
	}
	if cs.Annotations == nil {
		fields["annotations"] = []any{}
	}
	for _, ch := range models.Channels {
		label, ok := cs.Labels[ch]
		if !ok {
			label = ch.DefaultLabel()
		}
		fields[ch.LabelField()] = label
		fields[ch.DataField()] = nonNil(cs.Data[ch])
	}
	return protocol.OK(fields)
}

func nonNil(v []any) []any {
	if v == nil {
		return []any{}
	}
	return v
}

// bindFields decodes the request body as one flat JSON object.
func bindFields(c echo.Context) (map[string]any, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, NewBadRequestError("failed to read request body", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, NewBadRequestError("request body must be a JSON object", err)
	}
	if fields == nil {
		return nil, NewBadRequestError("request body must be a JSON object", nil)
	}
	return fields, nil
}

func acceptsMsgpack(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEMsgpack)
}
