package testing

import (
	"errors"
	"os"
	"testing"

	"github.com/desertthunder/listenx/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// SamplePlaylist is a two-track kugou playlist with one unresolved track.
func SamplePlaylist() *models.Playlist {
	pl := models.NewPlaylist(models.PlaylistSummary{
		ID:        "kgplaylist_42",
		Title:     "Test Playlist",
		CoverURL:  "http://imge.kugou.com/soft/collection/400/cover.jpg",
		SourceURL: "https://www.kugou.com/yy/special/single/42.html",
	})
	pl.Tracks = []models.Track{
		{
			ID:        "kgtrack_H1",
			Title:     "Song One",
			Artist:    "Artist One",
			ArtistID:  "kgartist_7",
			Album:     "Album One",
			AlbumID:   "kgalbum_9",
			Source:    models.Kugou,
			SourceURL: "https://www.kugou.com/song/#hash=H1&album_id=9",
		},
		{
			ID:        "kgtrack_H2",
			Title:     "Song Two",
			Artist:    models.UnknownArtist,
			Album:     models.UnknownAlbum,
			Source:    models.Kugou,
			SourceURL: "https://www.kugou.com/song/#hash=H2&album_id=0",
		},
	}
	pl.Failed = []models.FailedTrack{{NativeID: "H3", Error: "kugou: status 30020: 歌曲不存在"}}
	return &pl
}
