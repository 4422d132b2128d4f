package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/shared"
)

// ManifestEntry describes one playlist of a bulk export.
type ManifestEntry struct {
	PlaylistID   string   `json:"playlist_id"`
	Title        string   `json:"title,omitempty"`
	Tracks       int      `json:"tracks"`
	FailedTracks int      `json:"failed_tracks,omitempty"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export. Entries keep the order the ids were requested in.
type Manifest struct {
	Provider  models.Provider `json:"provider"`
	Format    Format          `json:"format"`
	Directory string          `json:"directory"`
	CreatedAt time.Time       `json:"created_at"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Entries   []ManifestEntry `json:"entries"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
