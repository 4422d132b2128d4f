// package models defines the unified data model for the catalog aggregator
package models

// Track is a single song normalized from a provider's per-track and per-album payloads.
type Track struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	ArtistID  string   `json:"artist_id"`
	Album     string   `json:"album"`
	AlbumID   string   `json:"album_id"`
	Source    Provider `json:"source"`
	SourceURL string   `json:"source_url"`
	ImageURL  string   `json:"img_url"`
	LyricURL  string   `json:"lyric_url,omitempty"`
}

// PlaylistSummary is the listing view of a playlist. It never carries tracks.
type PlaylistSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CoverURL  string `json:"cover_img_url"`
	SourceURL string `json:"source_url"`
}

// FailedTrack records a native track id the detail pipeline could not resolve.
type FailedTrack struct {
	NativeID string `json:"native_id"`
	Error    string `json:"error"`
}

// Playlist is a [PlaylistSummary] plus its tracks in the provider's native order.
//
// Tracks is empty for listing results. Failed is only populated when the detail
// pipeline runs in partial mode and some tracks could not be fetched.
type Playlist struct {
	PlaylistSummary
	Tracks []Track       `json:"tracks"`
	Failed []FailedTrack `json:"failed,omitempty"`
}

// NewPlaylist wraps a summary into a track-less [Playlist].
func NewPlaylist(s PlaylistSummary) Playlist {
	return Playlist{PlaylistSummary: s, Tracks: []Track{}}
}

// PagedResult is one page of items.
//
// Page is 1-based. Providers without real pagination report Page=0 and Total=0
// and return every item they have in a single page.
type PagedResult[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// Paginated reports whether the provider supplied true pagination fields.
func (p *PagedResult[T]) Paginated() bool {
	return p.Page > 0
}

// MapPage converts the items of a page while carrying the pagination fields through unchanged.
func MapPage[T, U any](in *PagedResult[T], fn func(T) U) *PagedResult[U] {
	out := &PagedResult[U]{
		Items:    make([]U, len(in.Items)),
		Page:     in.Page,
		PageSize: in.PageSize,
		Total:    in.Total,
	}
	for i, item := range in.Items {
		out.Items[i] = fn(item)
	}
	return out
}

// ListParams are the listing inputs accepted by every provider.
type ListParams struct {
	FilterID string // provider category, empty for all
	Offset   int    // zero-based item offset
}
