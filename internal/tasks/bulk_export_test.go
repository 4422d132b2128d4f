package tasks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/listenx/internal/formatter"
	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/shared"
	th "github.com/desertthunder/listenx/internal/testing"
)

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	newExportAggregator := func() *Aggregator {
		kg := newMockService(models.Kugou)
		kg.playlists["1"] = []string{"a", "b"}
		kg.playlists["2"] = []string{"c"}
		kg.playlists["3"] = []string{"d", "e", "f"}
		kg.failing["e"] = &shared.ProviderError{Provider: "kugou", Code: 1}
		return NewAggregator(AggregatorOpts{Kugou: kg, Pool: PoolOpts{Workers: 2}})
	}

	tests := []struct {
		name      string
		format    formatter.Format
		filesEach int
	}{
		{name: "json", format: formatter.JSON, filesEach: 1},
		{name: "csv", format: formatter.CSV, filesEach: 2},
		{name: "markdown", format: formatter.Markdown, filesEach: 1},
		{name: "text", format: formatter.Text, filesEach: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			agg := newExportAggregator()

			m, path, err := agg.BulkExport(ctx, nil, "kugou", []string{"1", "2", "3"}, BulkExportOpts{Format: tt.format, OutputDir: dir})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "export_manifest.json"), path)
			assert.Equal(t, 3, m.Total)
			assert.Equal(t, 3, m.Succeeded)
			assert.Zero(t, m.Failed)

			for i, e := range m.Entries {
				assert.Empty(t, e.Error, "entry %d", i)
				assert.Len(t, e.Files, tt.filesEach, "entry %d", i)
				for _, f := range e.Files {
					th.AssertFileExists(t, f)
				}
			}
			assert.Equal(t, "1", m.Entries[0].PlaylistID)
			assert.Equal(t, 1, m.Entries[2].FailedTracks)
			assert.Equal(t, 2, m.Entries[2].Tracks)
		})
	}

	t.Run("failed playlists are recorded", func(t *testing.T) {
		dir := t.TempDir()
		agg := newExportAggregator()
		progress := make(chan ProgressUpdate, 10)

		m, path, err := agg.BulkExport(ctx, progress, "kugou", []string{"1", "missing"}, BulkExportOpts{OutputDir: dir, NumWorkers: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, m.Succeeded)
		assert.Equal(t, 1, m.Failed)
		assert.Equal(t, "missing", m.Entries[1].PlaylistID)
		assert.Contains(t, m.Entries[1].Error, "playlist not found")

		var decoded formatter.Manifest
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, models.Kugou, decoded.Provider)
		assert.Len(t, decoded.Entries, 2)

		close(progress)
		var messages []string
		for u := range progress {
			assert.Equal(t, ExportingPlaylist, u.Phase)
			messages = append(messages, u.Message)
		}
		require.Len(t, messages, 2)
		assert.True(t, strings.Contains(messages[0], "✓") || strings.Contains(messages[1], "✓"))
	})

	t.Run("default output directory", func(t *testing.T) {
		t.Chdir(t.TempDir())
		agg := newExportAggregator()

		m, _, err := agg.BulkExport(ctx, nil, "kugou", []string{"2"}, BulkExportOpts{})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(m.Directory, "kugou_export_"))
		assert.Equal(t, formatter.JSON, m.Format)
		th.AssertDirExists(t, m.Directory)
	})

	t.Run("invalid output directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		_, _, err := newExportAggregator().BulkExport(ctx, nil, "kugou", []string{"1"}, BulkExportOpts{OutputDir: filepath.Join(file, "sub")})
		assert.Error(t, err)
	})

	t.Run("unknown format is rejected before anything is written", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")

		m, _, err := newExportAggregator().BulkExport(ctx, nil, "kugou", []string{"1"}, BulkExportOpts{Format: "xml", OutputDir: dir})
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
		assert.Nil(t, m)
		assert.NoDirExists(t, dir)
	})

	t.Run("format names are normalized", func(t *testing.T) {
		m, _, err := newExportAggregator().BulkExport(ctx, nil, "kugou", []string{"2"}, BulkExportOpts{Format: "md", OutputDir: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, formatter.Markdown, m.Format)
	})

	t.Run("unavailable service", func(t *testing.T) {
		_, _, err := newExportAggregator().BulkExport(ctx, nil, "netease", []string{"1"}, BulkExportOpts{OutputDir: t.TempDir()})
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		m, _, err := newExportAggregator().BulkExport(cctx, nil, "kugou", []string{"1", "2"}, BulkExportOpts{OutputDir: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, 2, m.Failed)
	})
}

func TestExportPlaylist(t *testing.T) {
	t.Run("unknown format is reported in the entry", func(t *testing.T) {
		dir := t.TempDir()
		entry := ExportPlaylist(context.Background(), th.SamplePlaylist(), BulkExportOpts{Format: "xml", OutputDir: dir})

		assert.Contains(t, entry.Error, "unknown format")
		assert.Empty(t, entry.Files)
		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("json", func(t *testing.T) {
		dir := t.TempDir()
		entry := ExportPlaylist(context.Background(), th.SamplePlaylist(), BulkExportOpts{Format: formatter.JSON, OutputDir: dir})

		require.Empty(t, entry.Error)
		th.AssertFileExists(t, filepath.Join(dir, "kgplaylist_42.json"))
	})
}
