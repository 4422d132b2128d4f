// Package ui implements an interactive catalog browser using bubbletea's Elm architecture.
//
// The TUI walks through one provider's catalog:
//  1. [PlaylistListView] : Browse a listing page, "n"/"p" move between pages
//  2. [LoadingView] : Follow track resolution while a playlist is fetched
//  3. [TrackListView] : Inspect resolved tracks and the ids that failed
//  4. [ConfirmView] : Confirm exporting the playlist
//  5. [ResultView] : Show the files written by the export
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the [Msg] union type.
// Progress updates flow through a channel from the aggregator's track pool, so the loading view never blocks the fetch.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
