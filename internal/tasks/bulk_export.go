package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/listenx/internal/formatter"
	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/shared"
)

const maxExportWorkers = 4

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format        formatter.Format // Export format: json, csv, markdown, txt
	OutputDir     string           // Base output directory (default: {provider}_export_{epoch})
	NumWorkers    int              // Playlists exported concurrently (default: 2, max: 4)
	RateLimit     float64          // Playlists started per second, 0 for unlimited
	DownloadCover bool             // Save cover images next to markdown exports
}

type exportJob struct {
	index int
	id    string
}

type exportResult struct {
	index int
	entry formatter.ManifestEntry
}

// BulkExport fetches several playlists with their tracks and writes each one to OutputDir.
//
// Each playlist is resolved with the aggregator's track pool. Playlist failures are recorded in the
// manifest rather than aborting the export; the manifest is written as export_manifest.json.
func (a *Aggregator) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	name string,
	ids []string,
	opts BulkExportOpts,
) (*formatter.Manifest, string, error) {
	p, err := a.Resolve(name)
	if err != nil {
		return nil, "", err
	}
	if _, err := a.service(p); err != nil {
		return nil, "", err
	}

	f, err := formatter.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, "", err
	}
	opts.Format = f
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("%s_export_%d", p, time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	opts.NumWorkers = min(opts.NumWorkers, maxExportWorkers)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create output directory: %w", err)
	}

	manifest := &formatter.Manifest{
		Provider:  p,
		Format:    opts.Format,
		Directory: opts.OutputDir,
		CreatedAt: time.Now().UTC(),
		Total:     len(ids),
		Entries:   make([]formatter.ManifestEntry, len(ids)),
	}

	limiter := PoolOpts{RateLimit: opts.RateLimit}.limiter()

	jobs := make(chan exportJob, len(ids))
	results := make(chan exportResult, len(ids))
	for i, id := range ids {
		jobs <- exportJob{index: i, id: id}
	}
	close(jobs)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go a.exportWorker(ctx, &wg, limiter, string(p), jobs, results, opts)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		manifest.Entries[res.index] = res.entry

		if res.entry.Error == "" {
			manifest.Succeeded++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.entry.Title, len(res.entry.Files)))
		} else {
			manifest.Failed++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.entry.PlaylistID, fmt.Errorf("%s", res.entry.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return manifest, "", fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	return manifest, manifestPath, nil
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (a *Aggregator) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	provider string,
	jobs <-chan exportJob,
	results chan<- exportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		entry := formatter.ManifestEntry{PlaylistID: job.id}
		if err := limiter.Wait(ctx); err != nil {
			entry.Error = err.Error()
			results <- exportResult{index: job.index, entry: entry}
			continue
		}

		pl, err := a.GetPlaylistWithTracks(ctx, provider, job.id, nil)
		if err != nil {
			entry.Error = fmt.Sprintf("failed to fetch playlist: %v", err)
			results <- exportResult{index: job.index, entry: entry}
			continue
		}

		entry = ExportPlaylist(ctx, pl, opts)
		entry.PlaylistID = job.id
		results <- exportResult{index: job.index, entry: entry}
	}
}

// ExportPlaylist writes one playlist into opts.OutputDir in opts.Format. Failures are reported in the entry.
func ExportPlaylist(ctx context.Context, pl *models.Playlist, opts BulkExportOpts) formatter.ManifestEntry {
	entry := formatter.ManifestEntry{
		Title:        pl.Title,
		Tracks:       len(pl.Tracks),
		FailedTracks: len(pl.Failed),
		Files:        []string{},
	}

	switch opts.Format {
	case formatter.CSV:
		res, err := formatter.WriteCSVExport(pl, filepath.Join(opts.OutputDir, pl.ID))
		if err != nil {
			entry.Error = fmt.Sprintf("CSV export failed: %v", err)
			return entry
		}
		entry.Files = []string{res.TracksFile, res.MetadataFile}
	case formatter.Markdown:
		res, err := formatter.WriteMarkdownExport(ctx, pl, filepath.Join(opts.OutputDir, pl.ID), opts.DownloadCover)
		if err != nil {
			entry.Error = fmt.Sprintf("markdown export failed: %v", err)
			return entry
		}
		entry.Files = res.Files
	case formatter.Text:
		path, err := formatter.WriteTextExport(pl, filepath.Join(opts.OutputDir, pl.ID+"_tracks.txt"))
		if err != nil {
			entry.Error = fmt.Sprintf("text export failed: %v", err)
			return entry
		}
		entry.Files = []string{path}
	case formatter.JSON:
		path, err := formatter.WriteJSONExport(pl, filepath.Join(opts.OutputDir, pl.ID+".json"))
		if err != nil {
			entry.Error = fmt.Sprintf("JSON export failed: %v", err)
			return entry
		}
		entry.Files = []string{path}
	default:
		entry.Error = fmt.Sprintf("%v: unknown format %q", shared.ErrInvalidArgument, opts.Format)
	}
	return entry
}
