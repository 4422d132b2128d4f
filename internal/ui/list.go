package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/listenx/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
	_ list.Item = failedItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Title }
func (i playlistItem) Title() string       { return i.playlist.Title }
func (i playlistItem) Description() string { return i.playlist.ID }

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != models.UnknownAlbum {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}

// failedItem lists an unresolved track after the resolved ones.
type failedItem struct {
	failed models.FailedTrack
}

func (i failedItem) FilterValue() string { return i.failed.NativeID }
func (i failedItem) Title() string       { return styles.Err.Render("✗ " + i.failed.NativeID) }
func (i failedItem) Description() string { return i.failed.Error }

func playlistItems(pls []models.Playlist) []list.Item {
	items := make([]list.Item, len(pls))
	for i, pl := range pls {
		items[i] = playlistItem{playlist: pl}
	}
	return items
}

func trackItems(pl *models.Playlist) []list.Item {
	items := make([]list.Item, 0, len(pl.Tracks)+len(pl.Failed))
	for _, tr := range pl.Tracks {
		items = append(items, trackItem{track: tr})
	}
	for _, f := range pl.Failed {
		items = append(items, failedItem{failed: f})
	}
	return items
}
