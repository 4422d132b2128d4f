// Package services defines the [Service] interface for music catalog providers and implements it for Kugou and Netease.
//
// # Service Interface
//
// Every provider lists playlist summaries, fetches a playlist envelope (summary plus ordered native track ids)
// and resolves single tracks. Results are mapped into the unified [models] types with ids namespaced by
// [models.ID], so callers never see a native schema.
//
// # Kugou Implementation
//
// [KugouService] talks to the mobile JSON API. Listings are paginated with a fixed page size of 30 and
// a track resolves with two calls: song info, then album info for the album name.
//
// # Netease Implementation
//
// [NeteaseService] scrapes the discover/playlist HTML listing with [scrape.NeteasePlaylists].
// Playlist detail, song detail and lyrics go through the signed weapi endpoints: each body is a form of
// exactly params and encSecKey built by [weapi.EncryptJSON]. The client carries a cookie jar seeded with
// the _ntes_nuid and _ntes_nnid cookies.
//
// # Error Handling
//
// Failures are reported with the typed errors of the shared package:
//   - [shared.TransportError] : the provider could not be reached
//   - [shared.HTTPStatusError] : non-2xx HTTP status
//   - [shared.DecodeError] : JSON or HTML did not match the expected shape
//   - [shared.ProviderError] : well-formed payload with a non-success business status
//   - [shared.CryptoError] : request signing failed
//
// Missing artist or album fields are not errors; they map to [models.UnknownArtist] and [models.UnknownAlbum].
package services
