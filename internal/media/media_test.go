package media

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookfile-viewer/backend/internal/api"
	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/protocol"
	"github.com/cookfile-viewer/backend/internal/remote"
	"github.com/cookfile-viewer/backend/internal/storage"
	"github.com/cookfile-viewer/backend/internal/testutil"
)

var testPaths = models.MediaPaths{ImagePath: "/static/img/cookfile/", CookfileID: testutil.FixtureCookfileID}

func newRemote(t *testing.T) (remote.Store, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	store.Put(testutil.FixtureSession())
	srv := httptest.NewServer(api.NewRouter(store, api.RouterOptions{}))
	t.Cleanup(srv.Close)
	return remote.NewClient(remote.Options{BaseURL: srv.URL}), store
}

// ackingStore acknowledges media toggles without forwarding them.
type ackingStore struct {
	remote.Store
}

func (a ackingStore) Mutate(ctx context.Context, cmd protocol.MutateCommand) (protocol.Payload, error) {
	if _, ok := cmd.(protocol.ToggleMedia); ok {
		return protocol.OK(nil), nil
	}
	return a.Store.Mutate(ctx, cmd)
}

// blockingReads holds every read until released.
type blockingReads struct {
	remote.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingReads) Read(ctx context.Context, req protocol.ReadRequest) (protocol.Payload, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.Store.Read(ctx, req)
}

// blockingMutates holds every mutation until released.
type blockingMutates struct {
	remote.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingMutates) Mutate(ctx context.Context, cmd protocol.MutateCommand) (protocol.Payload, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.Store.Mutate(ctx, cmd)
}

type selectionFixture struct {
	manager  *SelectionManager
	page     *testutil.Page
	reporter *testutil.Reporter
	store    *storage.MemoryStore
	assets   map[string][]string
}

func newSelectionFixture(t *testing.T, wrap func(remote.Store) remote.Store, verify bool) *selectionFixture {
	t.Helper()
	client, store := newRemote(t)
	if wrap != nil {
		client = wrap(client)
	}
	f := &selectionFixture{page: testutil.NewPage(), reporter: &testutil.Reporter{}, store: store, assets: map[string][]string{}}
	f.manager = NewSelectionManager(SelectionOptions{
		Filename: testutil.FixtureFilename,
		Store:    client,
		View:     f.page,
		Reporter: f.reporter,
		Paths:    testPaths,
		Verify:   verify,
		OnAssets: func(id string, assets []string) { f.assets[id] = assets },
	})
	return f
}

func TestSelection_LoadCandidates(t *testing.T) {
	f := newSelectionFixture(t, nil, true)

	list, err := f.manager.LoadCandidates(context.Background(), testutil.FixtureCommentA)
	require.NoError(t, err)
	require.Len(t, list, 3)

	state, ok := f.manager.State(testutil.FixtureCommentA, "b.jpg")
	assert.True(t, ok)
	assert.Equal(t, models.Selected, state)
	state, _ = f.manager.State(testutil.FixtureCommentA, "c.jpg")
	assert.Equal(t, models.Unselected, state)
	assert.Equal(t, 1, f.page.Count("show_candidates"))
}

func TestSelection_Toggle(t *testing.T) {
	f := newSelectionFixture(t, nil, true)
	ctx := context.Background()

	got, err := f.manager.Toggle(ctx, testutil.FixtureCommentA, "b.jpg", models.Selected)
	require.NoError(t, err)
	assert.Equal(t, models.Unselected, got)
	assert.Equal(t, []models.SelectState{models.Unselected}, f.page.SelectedStates(testutil.FixtureCommentA, "b.jpg"))

	ev, ok := f.page.Last("set_thumbnails")
	require.True(t, ok)
	assert.Equal(t, []models.ImageRef{{
		CommentID: testutil.FixtureCommentA,
		Filename:  "a.jpg",
		URL:       "/static/img/cookfile/42/thumbs/a.jpg",
	}}, ev.Value)
	assert.Equal(t, []string{"a.jpg"}, f.assets[testutil.FixtureCommentA])

	got, err = f.manager.Toggle(ctx, testutil.FixtureCommentB, "c.jpg", models.Unselected)
	require.NoError(t, err)
	assert.Equal(t, models.Selected, got)
	attached, _ := f.store.CommentAssets(testutil.FixtureFilename, testutil.FixtureCommentB)
	assert.Equal(t, []string{"c.jpg"}, attached)
}

func TestSelection_ToggleFaultKeepsState(t *testing.T) {
	f := newSelectionFixture(t, nil, true)
	_, err := f.manager.LoadCandidates(context.Background(), testutil.FixtureCommentA)
	require.NoError(t, err)
	f.store.FailNext("Media locked")

	got, err := f.manager.Toggle(context.Background(), testutil.FixtureCommentA, "a.jpg", models.Selected)
	require.Error(t, err)
	assert.Equal(t, models.Selected, got)

	assert.Empty(t, f.page.SelectedStates(testutil.FixtureCommentA, "a.jpg"))
	state, _ := f.manager.State(testutil.FixtureCommentA, "a.jpg")
	assert.Equal(t, models.Selected, state)
	assert.Zero(t, f.page.Count("set_thumbnails"))
	require.Len(t, f.reporter.Reports(), 1)
	assert.Equal(t, "media_toggle", f.reporter.Reports()[0].Op)
}

func TestSelection_ToggleWaitsForAck(t *testing.T) {
	var bm *blockingMutates
	f := newSelectionFixture(t, func(s remote.Store) remote.Store {
		bm = &blockingMutates{Store: s, entered: make(chan struct{}), release: make(chan struct{})}
		return bm
	}, true)
	_, err := f.manager.LoadCandidates(context.Background(), testutil.FixtureCommentA)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		_, err := f.manager.Toggle(context.Background(), testutil.FixtureCommentA, "a.jpg", models.Selected)
		done <- err
	}()
	<-bm.entered

	// nothing is shown while the store has not answered
	assert.Empty(t, f.page.SelectedStates(testutil.FixtureCommentA, "a.jpg"))
	state, _ := f.manager.State(testutil.FixtureCommentA, "a.jpg")
	assert.Equal(t, models.Selected, state)

	close(bm.release)
	require.NoError(t, <-done)
	assert.Equal(t, []models.SelectState{models.Unselected}, f.page.SelectedStates(testutil.FixtureCommentA, "a.jpg"))
}

func TestSelection_ToggleFaultWhilePending(t *testing.T) {
	var bm *blockingMutates
	f := newSelectionFixture(t, func(s remote.Store) remote.Store {
		bm = &blockingMutates{Store: s, entered: make(chan struct{}), release: make(chan struct{})}
		return bm
	}, true)
	f.store.FailNext("Media locked")

	done := make(chan error)
	go func() {
		_, err := f.manager.Toggle(context.Background(), testutil.FixtureCommentA, "a.jpg", models.Selected)
		done <- err
	}()
	<-bm.entered
	assert.Empty(t, f.page.SelectedStates(testutil.FixtureCommentA, "a.jpg"))

	close(bm.release)
	require.Error(t, <-done)
	assert.Empty(t, f.page.SelectedStates(testutil.FixtureCommentA, "a.jpg"))
}

func TestSelection_VerifyCorrectsState(t *testing.T) {
	wrap := func(s remote.Store) remote.Store { return ackingStore{s} }

	t.Run("verify on", func(t *testing.T) {
		f := newSelectionFixture(t, wrap, true)
		got, err := f.manager.Toggle(context.Background(), testutil.FixtureCommentB, "a.jpg", models.Unselected)
		require.NoError(t, err)

		// the store never attached it, so the rendered state goes back
		assert.Equal(t, models.Unselected, got)
		assert.Equal(t, []models.SelectState{models.Selected, models.Unselected}, f.page.SelectedStates(testutil.FixtureCommentB, "a.jpg"))
	})

	t.Run("verify off", func(t *testing.T) {
		f := newSelectionFixture(t, wrap, false)
		got, err := f.manager.Toggle(context.Background(), testutil.FixtureCommentB, "a.jpg", models.Unselected)
		require.NoError(t, err)
		assert.Equal(t, models.Selected, got)
		assert.Equal(t, []models.SelectState{models.Selected}, f.page.SelectedStates(testutil.FixtureCommentB, "a.jpg"))
	})
}

func TestSelection_Forget(t *testing.T) {
	f := newSelectionFixture(t, nil, true)
	_, err := f.manager.LoadCandidates(context.Background(), testutil.FixtureCommentA)
	require.NoError(t, err)

	f.manager.Forget()
	_, ok := f.manager.State(testutil.FixtureCommentA, "a.jpg")
	assert.False(t, ok)
}

func TestRemoval_MarkOrder(t *testing.T) {
	page := testutil.NewPage()
	r := NewRemovalManager(RemovalOptions{Filename: "f", Sink: page})
	r.Initialize([]models.MediaAsset{{ID: "1", Filename: "a"}, {ID: "2", Filename: "b"}, {ID: "3", Filename: "c"}})

	_, err := r.Mark("b", true)
	require.NoError(t, err)
	list, err := r.Mark("a", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, list)
	assert.Equal(t, "b,a", r.Submission())

	list, err = r.Mark("b", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, list)
	assert.False(t, r.Marked("b"))
	assert.True(t, r.Marked("a"))

	// marking twice keeps the first mark time
	r.Mark("c", true)
	r.Mark("a", true)
	assert.Equal(t, []string{"a", "c"}, r.Pending())

	assert.Equal(t, [][]string{{}, {"b"}, {"b", "a"}, {"a"}, {"a", "c"}, {"a", "c"}}, page.RemovalLists())

	_, err = r.Mark("zzz", true)
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func TestRemoval_LoadAndReset(t *testing.T) {
	client, store := newRemote(t)
	page := testutil.NewPage()
	reporter := &testutil.Reporter{}
	r := NewRemovalManager(RemovalOptions{Filename: testutil.FixtureFilename, Store: client, Sink: page, Reporter: reporter})

	assets, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, assets, 3)
	for _, a := range assets {
		assert.False(t, r.Marked(a.Filename))
	}
	r.Mark("a.jpg", true)

	r.Reset()
	assert.Empty(t, r.Pending())
	assert.Empty(t, r.Assets())

	store.FailNext("Nope")
	_, err = r.Load(context.Background())
	assert.Error(t, err)
	assert.Len(t, reporter.Reports(), 1)
}

func TestNavigator_Advance(t *testing.T) {
	client, store := newRemote(t)
	page := testutil.NewPage()
	reporter := &testutil.Reporter{}
	n := NewNavigator(NavigatorOptions{Filename: testutil.FixtureFilename, Store: client, View: page, Reporter: reporter, Paths: testPaths})
	ctx := context.Background()

	_, err := n.Advance(ctx, models.Next)
	assert.ErrorIs(t, err, ErrNoCursor)

	ref := n.Open("a.jpg", testutil.FixtureCommentA)
	assert.Equal(t, "/static/img/cookfile/42/a.jpg", ref.URL)

	steps := []struct {
		dir  models.Direction
		want string
	}{
		{models.Next, "b.jpg"},
		{models.Next, "a.jpg"},
		{models.Prev, "b.jpg"},
	}
	for _, s := range steps {
		ref, err := n.Advance(ctx, s.dir)
		require.NoError(t, err)
		assert.Equal(t, s.want, ref.Filename)
		cur, _ := n.Cursor()
		assert.Equal(t, s.want, cur.Filename)
	}
	assert.Equal(t, 4, page.Count("show_image"))

	store.FailNext("Gone")
	_, err = n.Advance(ctx, models.Next)
	require.Error(t, err)
	cur, _ := n.Cursor()
	assert.Equal(t, "b.jpg", cur.Filename)
	assert.Len(t, reporter.Reports(), 1)

	n.Close()
	_, ok := n.Cursor()
	assert.False(t, ok)
}

func TestNavigator_ClosedWhileWaiting(t *testing.T) {
	client, _ := newRemote(t)
	br := &blockingReads{Store: client, entered: make(chan struct{}), release: make(chan struct{})}
	reporter := &testutil.Reporter{}
	page := testutil.NewPage()
	n := NewNavigator(NavigatorOptions{Filename: testutil.FixtureFilename, Store: br, View: page, Reporter: reporter, Paths: testPaths})

	n.Open("a.jpg", testutil.FixtureCommentA)
	done := make(chan error)
	go func() {
		_, err := n.Advance(context.Background(), models.Next)
		done <- err
	}()
	<-br.entered
	n.Close()
	close(br.release)

	assert.ErrorIs(t, <-done, ErrNoCursor)
	assert.Empty(t, reporter.Reports())
	assert.Equal(t, 1, page.Count("show_image"))
}
