package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/services"
	"github.com/desertthunder/listenx/internal/shared"
)

// LyricService is implemented by providers that serve lyrics.
type LyricService interface {
	Lyric(ctx context.Context, nativeTrackID string) (*services.Lyric, error)
}

// AggregatorOpts contains the dependencies of an [Aggregator].
type AggregatorOpts struct {
	Kugou           services.Service
	Netease         services.Service
	DefaultProvider models.Provider // used for unrecognized names unless Strict
	Strict          bool            // reject unrecognized names with [shared.ErrUnknownProvider]
	Pool            PoolOpts
	Logger          *log.Logger
}

// Aggregator is the single entry point for listing playlists and fetching them with tracks.
type Aggregator struct {
	kugou    services.Service
	netease  services.Service
	fallback models.Provider
	strict   bool
	pool     *Pool
	logger   *log.Logger
}

// NewAggregator creates an Aggregator. Missing services surface as [shared.ErrServiceUnavailable] on use.
func NewAggregator(opts AggregatorOpts) *Aggregator {
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	fallback := opts.DefaultProvider
	if fallback == "" {
		fallback = models.Kugou
	}
	return &Aggregator{
		kugou:    opts.Kugou,
		netease:  opts.Netease,
		fallback: fallback,
		strict:   opts.Strict,
		pool:     NewPool(opts.Pool, logger),
		logger:   logger,
	}
}

// Resolve maps a provider name onto a provider, applying the fallback policy.
func (a *Aggregator) Resolve(name string) (models.Provider, error) {
	if p, ok := models.ParseProvider(name); ok {
		return p, nil
	}
	if a.strict {
		return "", fmt.Errorf("%w: %q", shared.ErrUnknownProvider, name)
	}
	a.logger.Warn("unknown provider, using default", "name", name, "default", a.fallback)
	return a.fallback, nil
}

func (a *Aggregator) service(p models.Provider) (services.Service, error) {
	var svc services.Service
	switch p {
	case models.Kugou:
		svc = a.kugou
	case models.Netease:
		svc = a.netease
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownProvider, p)
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: %s service not initialized", shared.ErrServiceUnavailable, p)
	}
	return svc, nil
}

func (a *Aggregator) dispatch(name string) (services.Service, error) {
	p, err := a.Resolve(name)
	if err != nil {
		return nil, err
	}
	return a.service(p)
}

// GetPlaylists lists one page of playlists. Pagination fields are carried through as the provider reports them.
func (a *Aggregator) GetPlaylists(ctx context.Context, name string, params models.ListParams, progress chan<- ProgressUpdate) (*models.PagedResult[models.Playlist], error) {
	svc, err := a.dispatch(name)
	if err != nil {
		return nil, err
	}
	logger := shared.WithLogger(a.logger, "request_id", shared.GenerateID(), "provider", svc.Name())
	logger.Info("get playlists", "filter", params.FilterID, "offset", params.Offset)

	sendProgress(progress, listingUpdate(svc.Name(), params.Offset))
	page, err := svc.ListPlaylists(ctx, params)
	if err != nil {
		logger.Error("list playlists failed", "kind", shared.ErrorKind(err), "err", err)
		return nil, err
	}
	return models.MapPage(page, models.NewPlaylist), nil
}

// GetPlaylistWithTracks fetches a playlist envelope and resolves its tracks in envelope order.
//
// Unresolved tracks are listed in [models.Playlist.Failed] unless the pool runs in fail-fast mode.
func (a *Aggregator) GetPlaylistWithTracks(ctx context.Context, name, nativeID string, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	svc, err := a.dispatch(name)
	if err != nil {
		return nil, err
	}
	logger := shared.WithLogger(a.logger, "request_id", shared.GenerateID(), "provider", svc.Name())
	logger.Info("get playlist with tracks", "id", nativeID)

	sendProgress(progress, fetchPlaylistUpdate(svc.Name(), nativeID))
	env, err := svc.GetPlaylist(ctx, nativeID)
	if err != nil {
		logger.Error("get playlist failed", "kind", shared.ErrorKind(err), "err", err)
		return nil, err
	}
	sendProgress(progress, foundPlaylistUpdate(env.Summary, len(env.TrackIDs)))

	pool := &Pool{opts: a.pool.opts, logger: logger}
	tracks, failed, err := pool.Resolve(ctx, env.TrackIDs, svc.GetTrack, progress)
	if err != nil {
		logger.Error("resolve tracks failed", "kind", shared.ErrorKind(err), "err", err)
		return nil, err
	}

	pl := models.NewPlaylist(env.Summary)
	pl.Tracks = tracks
	pl.Failed = failed
	logger.Info("playlist resolved", "tracks", len(tracks), "failed", len(failed))
	return &pl, nil
}

// Lyric fetches a track's lyric from providers that serve lyrics.
func (a *Aggregator) Lyric(ctx context.Context, name, nativeTrackID string) (*services.Lyric, error) {
	svc, err := a.dispatch(name)
	if err != nil {
		return nil, err
	}
	ls, ok := svc.(LyricService)
	if !ok {
		return nil, fmt.Errorf("%w: %s lyrics", shared.ErrNotImplemented, svc.Name())
	}
	return ls.Lyric(ctx, nativeTrackID)
}
