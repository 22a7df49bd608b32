package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookfile-viewer/backend/internal/api"
	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/storage"
	"github.com/cookfile-viewer/backend/internal/testutil"
)

func newStoreServer(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	store.Put(testutil.FixtureSession())
	srv := httptest.NewServer(api.NewRouter(store, api.RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv, store
}

func TestClient_ReadFullGraph(t *testing.T) {
	srv, _ := newStoreServer(t)

	for _, codec := range []Codec{CodecJSON, CodecMsgpack} {
		t.Run(string(codec), func(t *testing.T) {
			c := NewClient(Options{BaseURL: srv.URL, Codec: codec})
			p, err := c.Read(context.Background(), protocol.FullGraph{Filename: testutil.FixtureFilename})
			require.NoError(t, err)

			assert.True(t, p.IsOK())
			label, _ := p.String("PT1_label")
			assert.Equal(t, "Flat", label)
			data, ok := p.List("GT1_data")
			require.True(t, ok)
			assert.Equal(t, []any{225.5, nil, 230.0, 228.0}, data)
		})
	}
}

func TestClient_Mutate(t *testing.T) {
	srv, store := newStoreServer(t)
	c := NewClient(Options{BaseURL: srv.URL})

	p, err := c.Mutate(context.Background(), protocol.NewComment{Filename: testutil.FixtureFilename, Text: "Spritzed"})
	require.NoError(t, err)

	ack, err := protocol.DecodeCommentCreated(p)
	require.NoError(t, err)
	got, err := store.Comment(testutil.FixtureFilename, ack.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spritzed", got.Text)
}

func TestClient_ApplicationFault(t *testing.T) {
	srv, store := newStoreServer(t)
	c := NewClient(Options{BaseURL: srv.URL})

	store.FailNext("Denied")
	_, err := c.Mutate(context.Background(), protocol.EditTitle{Filename: testutil.FixtureFilename, Title: "x"})

	var af *ApplicationFault
	require.ErrorAs(t, err, &af)
	assert.Equal(t, "Denied", af.Result)
	assert.Equal(t, "edit_title", af.Op)
	assert.NotEmpty(t, af.RequestID)
	assert.True(t, IsFault(err))
	assert.Equal(t, "Denied", RawFault(err))

	// a 404 with a result marker is still an application fault
	_, err = c.Read(context.Background(), protocol.FullGraph{Filename: "missing.json"})
	require.ErrorAs(t, err, &af)
	assert.Equal(t, "cook session not found", af.Result)
}

func TestClient_MissingResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	_, err := c.Mutate(context.Background(), protocol.EditComment{Filename: "f", CommentID: "1"})

	var af *ApplicationFault
	require.ErrorAs(t, err, &af)
	assert.True(t, af.Missing)
	assert.Equal(t, "<no result>", RawFault(err))
}

func TestClient_TransportFault(t *testing.T) {
	t.Run("undecodable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewClient(Options{BaseURL: srv.URL}).Read(context.Background(), protocol.GetAllMedia{CookFilename: "f"})
		var tf *TransportFault
		require.ErrorAs(t, err, &tf)
		assert.Equal(t, http.StatusBadGateway, tf.Status)

		var af *ApplicationFault
		assert.False(t, errors.As(err, &af))
	})

	t.Run("error status without result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"message":"busy"}`))
		}))
		defer srv.Close()

		_, err := NewClient(Options{BaseURL: srv.URL}).Read(context.Background(), protocol.GetAllMedia{CookFilename: "f"})
		var tf *TransportFault
		require.ErrorAs(t, err, &tf)
		assert.Equal(t, http.StatusServiceUnavailable, tf.Status)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(Options{BaseURL: url}).Read(context.Background(), protocol.GetAllMedia{CookFilename: "f"})
		var tf *TransportFault
		require.ErrorAs(t, err, &tf)
		assert.Zero(t, tf.Status)
		assert.True(t, IsFault(err))
	})

	t.Run("canceled", func(t *testing.T) {
		srv, _ := newStoreServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewClient(Options{BaseURL: srv.URL}).Read(ctx, protocol.FullGraph{Filename: testutil.FixtureFilename})
		var tf *TransportFault
		require.ErrorAs(t, err, &tf)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_RequestShape(t *testing.T) {
	var (
		gotPath   string
		gotType   string
		gotID     string
		gotAccept string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get(HeaderRequestID)
		gotAccept = r.Header.Get("Accept")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"OK"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL + "/", Codec: CodecMsgpack})
	_, err := c.Mutate(context.Background(), protocol.ToggleMedia{
		Filename:      "f.json",
		CommentID:     "c1",
		AssetFilename: "a.jpg",
		State:         "selected",
	})
	require.NoError(t, err)

	assert.Equal(t, protocol.MutatePath, gotPath)
	assert.Equal(t, MIMEJSON, gotType)
	assert.Len(t, gotID, 36)
	assert.Equal(t, MIMEJSON, gotAccept)
	assert.Equal(t, map[string]any{
		"media":         true,
		"filename":      "f.json",
		"commentid":     "c1",
		"assetfilename": "a.jpg",
		"state":         "selected",
	}, gotBody)

	_, err = c.Read(context.Background(), protocol.GetAllMedia{CookFilename: "f.json"})
	require.NoError(t, err)
	assert.Equal(t, protocol.ReadPath, gotPath)
	assert.Contains(t, gotAccept, MIMEMsgpack)
}
