package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/services"
	"github.com/desertthunder/listenx/internal/shared"
	th "github.com/desertthunder/listenx/internal/testing"
)

func newLiveAggregator(t *testing.T, pool PoolOpts) *Aggregator {
	t.Helper()

	kgSrv := th.NewKugouServer(th.KugouFixture{
		Total:     600,
		Playlists: map[int][]string{42: {"H1", "H2", "H3", "H4"}},
		Songs: map[string]th.KugouSong{
			"H1": {Title: "One", SingerID: 1, SingerName: "Singer", AlbumID: 9},
			"H2": {Title: "Two", SingerID: 1, SingerName: "Singer", AlbumID: 12345},
			"H4": {Title: "Four"},
		},
		Albums:    map[int]string{9: "Nine"},
		FailSongs: map[string]bool{"H4": true},
	})
	t.Cleanup(kgSrv.Close)

	neSrv := th.NewNeteaseServer(th.NeteaseFixture{
		ListingSize: 35,
		Playlists:   map[int][]int{77: {5, 6}},
		Songs: map[int]th.NeteaseSong{
			5: {Title: "Five", ArtistID: 2, Artist: "Band", AlbumID: 3, Album: "Record", Lyric: "[00:01]five"},
			6: {Title: "Six"},
		},
	})
	t.Cleanup(neSrv.Close)

	cfg := shared.DefaultConfig()
	cfg.Providers.Kugou.H5URL = kgSrv.URL
	cfg.Providers.Kugou.CDNURL = kgSrv.URL
	cfg.Providers.Netease.Host = neSrv.URL

	kg := services.NewKugouService(cfg.Providers.Kugou, services.ServiceOpts{})
	ne, err := services.NewNeteaseService(cfg.Providers.Netease, services.ServiceOpts{Source: th.ZeroSource{}})
	require.NoError(t, err)

	return NewAggregator(AggregatorOpts{Kugou: kg, Netease: ne, DefaultProvider: models.Kugou, Pool: pool})
}

func TestAggregator_EndToEnd(t *testing.T) {
	ctx := context.Background()
	agg := newLiveAggregator(t, PoolOpts{Workers: 3})

	t.Run("kugou second page", func(t *testing.T) {
		res, err := agg.GetPlaylists(ctx, "kugou", models.ListParams{Offset: 30}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Page)
		assert.Equal(t, 30, res.PageSize)
		assert.Equal(t, 600, res.Total)
		assert.Len(t, res.Items, 30)
	})

	t.Run("netease listing", func(t *testing.T) {
		res, err := agg.GetPlaylists(ctx, "netease", models.ListParams{Offset: 30}, nil)
		require.NoError(t, err)
		assert.Len(t, res.Items, 35)
		assert.False(t, res.Paginated())
	})

	t.Run("unknown name falls back to kugou", func(t *testing.T) {
		res, err := agg.GetPlaylists(ctx, "tidal", models.ListParams{}, nil)
		require.NoError(t, err)
		assert.Equal(t, "kgplaylist_100000", res.Items[0].ID)
	})

	t.Run("kugou playlist with partial failures", func(t *testing.T) {
		pl, err := agg.GetPlaylistWithTracks(ctx, "kugou", "42", nil)
		require.NoError(t, err)

		require.Len(t, pl.Tracks, 2)
		assert.Equal(t, "kgtrack_H1", pl.Tracks[0].ID)
		assert.Equal(t, "Nine", pl.Tracks[0].Album)
		assert.Equal(t, models.UnknownAlbum, pl.Tracks[1].Album, "album absent from the dataset maps to the placeholder")

		require.Len(t, pl.Failed, 2)
		assert.Equal(t, "H3", pl.Failed[0].NativeID)
		assert.Equal(t, "H4", pl.Failed[1].NativeID)
		assert.Equal(t, len(pl.Tracks)+len(pl.Failed), 4)
	})

	t.Run("netease playlist", func(t *testing.T) {
		pl, err := agg.GetPlaylistWithTracks(ctx, "netease", "77", nil)
		require.NoError(t, err)
		require.Len(t, pl.Tracks, 2)
		assert.Equal(t, "netrack_5", pl.Tracks[0].ID)
		assert.Equal(t, "Band", pl.Tracks[0].Artist)
		assert.Equal(t, models.UnknownArtist, pl.Tracks[1].Artist)
		assert.Empty(t, pl.Failed)
	})

	t.Run("netease lyric", func(t *testing.T) {
		l, err := agg.Lyric(ctx, "netease", "5")
		require.NoError(t, err)
		assert.Equal(t, "[00:01]five", l.Lyric)
	})

	t.Run("fail fast aborts", func(t *testing.T) {
		strict := newLiveAggregator(t, PoolOpts{Workers: 1, FailFast: true})
		_, err := strict.GetPlaylistWithTracks(ctx, "kugou", "42", nil)
		require.Error(t, err)
		assert.Contains(t, []string{"provider", "http_status"}, shared.ErrorKind(err))
	})
}
