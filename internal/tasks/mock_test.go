package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/services"
	"github.com/desertthunder/listenx/internal/shared"
)

// mockService is an in-memory [services.Service] that records concurrency.
type mockService struct {
	name      models.Provider
	page      *models.PagedResult[models.PlaylistSummary]
	listErr   error
	playlists map[string][]string
	failing   map[string]error
	delay     time.Duration

	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func newMockService(name models.Provider) *mockService {
	return &mockService{
		name:      name,
		playlists: map[string][]string{},
		failing:   map[string]error{},
	}
}

func (m *mockService) Name() models.Provider { return m.name }

func (m *mockService) ListPlaylists(ctx context.Context, params models.ListParams) (*models.PagedResult[models.PlaylistSummary], error) {
	m.record("list")
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.page, nil
}

func (m *mockService) GetPlaylist(ctx context.Context, nativeID string) (*services.PlaylistEnvelope, error) {
	m.record("playlist:" + nativeID)
	ids, ok := m.playlists[nativeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, nativeID)
	}
	return &services.PlaylistEnvelope{
		Summary:  models.PlaylistSummary{ID: models.ID(m.name, models.KindPlaylist, nativeID), Title: "Playlist " + nativeID},
		TrackIDs: ids,
	}, nil
}

func (m *mockService) GetTrack(ctx context.Context, id string) (*models.Track, error) {
	m.record("track:" + id)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		peak := m.peak.Load()
		if n <= peak || m.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := m.failing[id]; ok {
		return nil, err
	}
	return &models.Track{
		ID:     models.ID(m.name, models.KindTrack, id),
		Title:  "Title " + id,
		Artist: "Artist",
		Album:  models.UnknownAlbum,
		Source: m.name,
	}, nil
}

func (m *mockService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockService) callCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// lyricMock adds lyrics to mockService.
type lyricMock struct {
	*mockService
}

func (l lyricMock) Lyric(ctx context.Context, id string) (*services.Lyric, error) {
	return &services.Lyric{TrackID: models.ID(l.name, models.KindTrack, id), Lyric: "[00:00]la"}, nil
}

func trackIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%03d", i)
	}
	return ids
}
