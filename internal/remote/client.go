// Package remote talks to the cook session store over its two JSON endpoints.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cookfile-viewer/backend/internal/protocol"
)

// Codec selects the response encoding requested from the read endpoint.
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

// Content types.
const (
	MIMEJSON    = "application/json; charset=utf-8"
	MIMEMsgpack = "application/msgpack"
)

// HeaderRequestID correlates a request with its response and log lines.
const HeaderRequestID = "X-Request-ID"

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 64 << 20

// Store is the remote session store as seen by the client components.
type Store interface {
	Read(ctx context.Context, req protocol.ReadRequest) (protocol.Payload, error)
	Mutate(ctx context.Context, cmd protocol.MutateCommand) (protocol.Payload, error)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	ReadPath   string
	MutatePath string
	Timeout    time.Duration
	Codec      Codec
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client implements Store over HTTP. It never retries.
type Client struct {
	baseURL    string
	readPath   string
	mutatePath string
	codec      Codec
	http       *http.Client
	logger     *log.Logger
}

var _ Store = (*Client)(nil)

// NewClient creates a client from opts, filling in the endpoint defaults.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		readPath:   opts.ReadPath,
		mutatePath: opts.MutatePath,
		codec:      opts.Codec,
		http:       opts.HTTPClient,
		logger:     opts.Logger,
	}
	if c.readPath == "" {
		c.readPath = protocol.ReadPath
	}
	if c.mutatePath == "" {
		c.mutatePath = protocol.MutatePath
	}
	if c.codec == "" {
		c.codec = CodecJSON
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: opts.Timeout}
	}
	if c.logger == nil {
		c.logger = log.New("remote")
		c.logger.SetLevel(log.OFF)
	}
	return c
}

// Read sends a read-endpoint request.
func (c *Client) Read(ctx context.Context, req protocol.ReadRequest) (protocol.Payload, error) {
	return c.do(ctx, c.readPath, req, c.codec)
}

// Mutate sends a mutate-endpoint command. Mutation responses are always JSON.
func (c *Client) Mutate(ctx context.Context, cmd protocol.MutateCommand) (protocol.Payload, error) {
	return c.do(ctx, c.mutatePath, cmd, CodecJSON)
}

func (c *Client) do(ctx context.Context, path string, req protocol.Request, accept Codec) (protocol.Payload, error) {
	op := req.Operation()
	reqID := uuid.NewString()

	body, err := json.Marshal(req.Fields())
	if err != nil {
		return nil, &TransportFault{Op: op, RequestID: reqID, Err: fmt.Errorf("encoding request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportFault{Op: op, RequestID: reqID, Err: err}
	}
	httpReq.Header.Set("Content-Type", MIMEJSON)
	httpReq.Header.Set(HeaderRequestID, reqID)
	if accept == CodecMsgpack {
		httpReq.Header.Set("Accept", MIMEMsgpack+", "+MIMEJSON)
	} else {
		httpReq.Header.Set("Accept", MIMEJSON)
	}

	start := time.Now()
	c.logger.Debugj(log.JSON{"request_id": reqID, "op": op, "path": path})

	resp, err := c.http.Do(httpReq)
	if err != nil {
		fault := &TransportFault{Op: op, RequestID: reqID, Err: err}
		c.logger.Errorf("[%s %s] %v", op, reqID[:8], fault)
		return nil, fault
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		fault := &TransportFault{Op: op, RequestID: reqID, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
		c.logger.Errorf("[%s %s] %v", op, reqID[:8], fault)
		return nil, fault
	}

	payload, decodeErr := decodePayload(resp.Header.Get("Content-Type"), raw)
	result, hasResult := payload.Result()

	switch {
	case decodeErr != nil:
		fault := &TransportFault{Op: op, RequestID: reqID, Status: resp.StatusCode, Err: decodeErr}
		c.logger.Errorf("[%s %s] %v", op, reqID[:8], fault)
		return nil, fault
	case resp.StatusCode >= http.StatusBadRequest && !hasResult:
		fault := &TransportFault{Op: op, RequestID: reqID, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
		c.logger.Errorf("[%s %s] %v", op, reqID[:8], fault)
		return nil, fault
	case !hasResult || result != protocol.ResultOK:
		fault := &ApplicationFault{Op: op, RequestID: reqID, Result: result, Missing: !hasResult}
		c.logger.Errorf("[%s %s] %v", op, reqID[:8], fault)
		return nil, fault
	}

	c.logger.Debugf("[%s %s] OK in %s", op, reqID[:8], time.Since(start).Round(time.Millisecond))
	return payload, nil
}

func decodePayload(contentType string, raw []byte) (protocol.Payload, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	var m map[string]any
	if mediaType == MIMEMsgpack {
		if err := msgpack.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decoding msgpack response: %w", err)
		}
		return protocol.Payload(protocol.Normalize(m).(map[string]any)), nil
	}

	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding JSON response: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("decoding JSON response: body is not an object")
	}
	return protocol.Payload(m), nil
}
