package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/listenx/internal/formatter"
	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/shared"
	"github.com/desertthunder/listenx/internal/tasks"
	th "github.com/desertthunder/listenx/internal/testing"
)

type fakeAggregator struct {
	pages     map[int]*models.PagedResult[models.Playlist]
	playlists map[string]*models.Playlist
	listErr   error
	offsets   []int
}

func (f *fakeAggregator) GetPlaylists(ctx context.Context, name string, params models.ListParams, progress chan<- tasks.ProgressUpdate) (*models.PagedResult[models.Playlist], error) {
	f.offsets = append(f.offsets, params.Offset)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if page, ok := f.pages[params.Offset]; ok {
		return page, nil
	}
	return &models.PagedResult[models.Playlist]{Items: []models.Playlist{}}, nil
}

func (f *fakeAggregator) GetPlaylistWithTracks(ctx context.Context, name, nativeID string, progress chan<- tasks.ProgressUpdate) (*models.Playlist, error) {
	pl, ok := f.playlists[nativeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, nativeID)
	}
	progress <- tasks.ProgressUpdate{Phase: tasks.FetchTracks, Step: len(pl.Tracks), Total: len(pl.Tracks), Message: "done"}
	return pl, nil
}

func listing(page int, ids ...string) *models.PagedResult[models.Playlist] {
	res := &models.PagedResult[models.Playlist]{Page: page, PageSize: len(ids), Total: 4}
	for _, id := range ids {
		res.Items = append(res.Items, models.NewPlaylist(models.PlaylistSummary{
			ID:    models.ID(models.Kugou, models.KindPlaylist, id),
			Title: "Playlist " + id,
		}))
	}
	return res
}

func newFake() *fakeAggregator {
	return &fakeAggregator{
		pages: map[int]*models.PagedResult[models.Playlist]{
			0: listing(1, "42", "43"),
			2: listing(2, "44", "45"),
		},
		playlists: map[string]*models.Playlist{"42": th.SamplePlaylist()},
	}
}

// drive runs cmd and feeds every resulting [Msg] back into m until the chain ends.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 100 {
			t.Fatal("command chain did not settle")
		}
		msg, ok := cmd().(Msg)
		if !ok {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func press(t *testing.T, m *Model, k tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(k)
	drive(t, m, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newLoadedModel(t *testing.T, agg Aggregator, opts Options) *Model {
	t.Helper()
	opts.Provider = models.Kugou
	m := NewModel(context.Background(), agg, opts)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drive(t, m, m.Init())
	return m
}

func TestModel(t *testing.T) {
	t.Run("Init loads the first page", func(t *testing.T) {
		agg := newFake()
		m := newLoadedModel(t, agg, Options{})

		if m.ViewState() != PlaylistListView {
			t.Fatalf("expected PlaylistListView, got %v", m.ViewState())
		}
		if got := len(m.playlistList.Items()); got != 2 {
			t.Errorf("expected 2 items, got %d", got)
		}
		if !strings.Contains(m.View(), "page 1 (2 per page, 4 total)") {
			t.Errorf("expected paging line in view, got:\n%s", m.View())
		}
	})

	t.Run("n and p move between pages", func(t *testing.T) {
		agg := newFake()
		m := newLoadedModel(t, agg, Options{})

		press(t, m, runes("n"))
		if m.offset != 2 || m.page.Page != 2 {
			t.Fatalf("expected offset 2 on page 2, got offset %d page %d", m.offset, m.page.Page)
		}
		press(t, m, runes("p"))
		if m.offset != 0 {
			t.Errorf("expected offset 0, got %d", m.offset)
		}
		want := []int{0, 2, 0}
		if fmt.Sprint(agg.offsets) != fmt.Sprint(want) {
			t.Errorf("expected offsets %v, got %v", want, agg.offsets)
		}
	})

	t.Run("p on the first page does nothing", func(t *testing.T) {
		agg := newFake()
		m := newLoadedModel(t, agg, Options{})

		press(t, m, runes("p"))
		if len(agg.offsets) != 1 {
			t.Errorf("expected no extra fetch, got offsets %v", agg.offsets)
		}
	})

	t.Run("enter resolves the selected playlist", func(t *testing.T) {
		m := newLoadedModel(t, newFake(), Options{})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.ViewState() != LoadingView {
			t.Fatalf("expected LoadingView while fetching, got %v", m.ViewState())
		}
		drive(t, m, cmd)

		if m.ViewState() != TrackListView {
			t.Fatalf("expected TrackListView, got %v", m.ViewState())
		}
		if m.selected.Title != "Test Playlist" {
			t.Errorf("expected selected playlist, got %q", m.selected.Title)
		}
		if m.progress.Phase != tasks.FetchTracks {
			t.Errorf("expected last progress in fetch_tracks, got %v", m.progress.Phase)
		}
		if got := len(m.trackList.Items()); got != 3 {
			t.Errorf("expected 2 tracks and 1 failure, got %d items", got)
		}
		if !strings.Contains(m.View(), "1 unresolved") {
			t.Errorf("expected unresolved count in view")
		}
		if !strings.Contains(m.View(), "export") {
			t.Errorf("expected track list help line, got:\n%s", m.View())
		}
	})

	t.Run("fetch error returns to the listing", func(t *testing.T) {
		m := newLoadedModel(t, newFake(), Options{})

		press(t, m, tea.KeyMsg{Type: tea.KeyDown})
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.ViewState() != PlaylistListView {
			t.Fatalf("expected PlaylistListView, got %v", m.ViewState())
		}
		if !errors.Is(m.err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected ErrPlaylistNotFound, got %v", m.err)
		}
		if !strings.Contains(m.View(), "Error:") {
			t.Errorf("expected error view")
		}

		press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		if m.err != nil {
			t.Errorf("expected esc to dismiss the error")
		}
	})

	t.Run("listing error is shown", func(t *testing.T) {
		agg := newFake()
		agg.listErr = &shared.HTTPStatusError{URL: "http://kugou", StatusCode: 503}
		m := newLoadedModel(t, agg, Options{})

		if !strings.Contains(m.View(), "503") {
			t.Errorf("expected status in error view, got:\n%s", m.View())
		}
	})

	t.Run("export writes the playlist", func(t *testing.T) {
		dir := t.TempDir()
		m := newLoadedModel(t, newFake(), Options{Format: formatter.JSON, OutputDir: dir})
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		press(t, m, runes("e"))
		if m.ViewState() != ConfirmView {
			t.Fatalf("expected ConfirmView, got %v", m.ViewState())
		}
		press(t, m, runes("y"))

		if m.ViewState() != ResultView {
			t.Fatalf("expected ResultView, got %v", m.ViewState())
		}
		if m.export.Error != "" {
			t.Fatalf("unexpected export error: %s", m.export.Error)
		}
		th.AssertFileExists(t, filepath.Join(dir, "kgplaylist_42.json"))
		if !strings.Contains(m.View(), "Export Complete") {
			t.Errorf("expected success view")
		}

		press(t, m, runes("r"))
		if m.ViewState() != PlaylistListView || m.export != nil {
			t.Errorf("expected restart to reset to the listing")
		}
	})

	t.Run("declining the export returns to tracks", func(t *testing.T) {
		m := newLoadedModel(t, newFake(), Options{OutputDir: t.TempDir()})
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		press(t, m, runes("e"))
		press(t, m, runes("n"))

		if m.ViewState() != TrackListView {
			t.Errorf("expected TrackListView, got %v", m.ViewState())
		}
	})

	t.Run("q quits from the listing", func(t *testing.T) {
		m := newLoadedModel(t, newFake(), Options{})
		_, cmd := m.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestItems(t *testing.T) {
	pl := th.SamplePlaylist()
	items := trackItems(pl)

	t.Run("resolved tracks come first", func(t *testing.T) {
		if _, ok := items[0].(trackItem); !ok {
			t.Fatalf("expected trackItem, got %T", items[0])
		}
		if _, ok := items[2].(failedItem); !ok {
			t.Fatalf("expected failedItem last, got %T", items[2])
		}
	})

	t.Run("placeholder album is omitted", func(t *testing.T) {
		if got := items[0].(trackItem).Description(); got != "Artist One • Album One" {
			t.Errorf("unexpected description %q", got)
		}
		if got := items[1].(trackItem).Description(); got != models.UnknownArtist {
			t.Errorf("unexpected description %q", got)
		}
	})

	t.Run("failed item describes the error", func(t *testing.T) {
		if got := items[2].(failedItem).Description(); got != pl.Failed[0].Error {
			t.Errorf("unexpected description %q", got)
		}
	})
}
