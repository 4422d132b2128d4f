// Package tasks orchestrates playlist operations over the provider services with real-time progress reporting.
//
// # Core Operations
//
// [Aggregator] is the single entry point:
//
//  1. [Aggregator.GetPlaylists] : one page of playlist summaries
//     - Dispatches by provider name over the closed provider set
//     - Carries page, page size and total through unchanged
//
//  2. [Aggregator.GetPlaylistWithTracks] : a playlist and its tracks
//     - Fetches the playlist envelope (summary + ordered native track ids)
//     - Resolves every track with a bounded [Pool], keeping envelope order
//     - Reports unresolved tracks in [models.Playlist.Failed] (partial mode) or aborts (fail-fast)
//
//  3. [Aggregator.BulkExport] : several playlists written to disk with a manifest
//
// # Provider Dispatch
//
// Names are parsed with [models.ParseProvider]. An unrecognized name falls back to the configured
// default provider with a warning, or fails with [shared.ErrUnknownProvider] in strict mode.
//
// # Progress Reporting
//
// All operations take an optional channel for [ProgressUpdate] values.
// Updates use select with default to prevent blocking.
//
// # Concurrency
//
// [Pool] runs at most Workers fetches at once, paced by a [rate.Limiter] when RateLimit is set.
// Fail-fast mode cancels the shared context so queued fetches end with the context error.
package tasks
