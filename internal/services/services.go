package services

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/weapi"
)

// Service is the capability set every provider implements against its native schema.
type Service interface {
	// Name returns the provider this service talks to.
	Name() models.Provider

	// ListPlaylists returns one page of playlist summaries.
	ListPlaylists(ctx context.Context, params models.ListParams) (*models.PagedResult[models.PlaylistSummary], error)

	// GetPlaylist fetches the playlist envelope: its summary and ordered native track ids.
	GetPlaylist(ctx context.Context, nativeID string) (*PlaylistEnvelope, error)

	// GetTrack resolves one native track id into a unified [models.Track].
	GetTrack(ctx context.Context, nativeTrackID string) (*models.Track, error)
}

// PlaylistEnvelope is a playlist before its tracks are resolved.
type PlaylistEnvelope struct {
	Summary  models.PlaylistSummary
	TrackIDs []string // native ids in provider order
}

// ServiceOpts contains the optional collaborators of a provider service.
type ServiceOpts struct {
	Logger     *log.Logger
	HTTPClient *http.Client     // replaces the default client; netease still installs its cookie jar when Jar is nil
	Timeout    time.Duration    // per-request timeout of the default client, zero for none
	Source     weapi.Source     // randomness for session keys and cookie nonces
	Now        func() time.Time // clock for cookie timestamps
}
