package models

import "strings"

// Provider is the closed set of upstream catalogs.
type Provider string

const (
	Kugou   Provider = "kugou"
	Netease Provider = "netease"
)

// Providers returns every known provider in a stable order.
func Providers() []Provider {
	return []Provider{Kugou, Netease}
}

// ParseProvider matches a provider name case-insensitively.
func ParseProvider(name string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case Kugou:
		return Kugou, true
	case Netease:
		return Netease, true
	default:
		return "", false
	}
}

// Tag returns the short prefix used in unified ids.
//
// Unknown providers share the kugou tag; callers are expected to parse names
// with [ParseProvider] before building ids.
func (p Provider) Tag() string {
	switch p {
	case Netease:
		return "ne"
	default:
		return "kg"
	}
}

// Kind is the entity kind segment of a unified id.
type Kind string

const (
	KindPlaylist Kind = "playlist"
	KindTrack    Kind = "track"
	KindAlbum    Kind = "album"
	KindArtist   Kind = "artist"
)

// ID maps a native id into the unified id space: "<tag><kind>_<native>".
func ID(p Provider, k Kind, nativeID string) string {
	return p.Tag() + string(k) + "_" + nativeID
}

// Prefix returns the fixed prefix shared by every id of (p, k).
func Prefix(p Provider, k Kind) string {
	return p.Tag() + string(k) + "_"
}
