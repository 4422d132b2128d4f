package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listenx/internal/formatter"
	"github.com/desertthunder/listenx/internal/tasks"
)

// Export fetches several playlists and writes them with a manifest.
//
// Playlists that fail are listed in the summary and the manifest without failing the command.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	agg, err := r.aggregator()
	if err != nil {
		return err
	}

	ids := cmd.StringSlice("ids")
	r.logger.Info("starting export", "provider", r.provider(cmd), "playlists", len(ids), "format", f)

	progress, wait := r.progressPrinter()
	manifest, manifestPath, err := agg.BulkExport(ctx, progress, r.provider(cmd), ids, tasks.BulkExportOpts{
		Format:        f,
		OutputDir:     cmd.String("dir"),
		NumWorkers:    cmd.Int("workers"),
		RateLimit:     cmd.Float("rate"),
		DownloadCover: cmd.Bool("cover"),
	})
	wait()
	if manifest == nil {
		return err
	}

	r.writeStatus("\n")
	r.writeStatusHeader("Export Complete!")
	r.writeStatus("Directory: %s\n", manifest.Directory)
	r.writeStatus("Exported: %d/%d\n", manifest.Succeeded, manifest.Total)

	if manifest.Failed > 0 {
		r.writeStatus("\n%s\n", r.palette.Warn.Render(fmt.Sprintf("Failed to export %d playlists:", manifest.Failed)))
		for _, e := range manifest.Entries {
			if e.Error != "" {
				r.writeStatus("  - %s: %s\n", e.PlaylistID, e.Error)
			}
		}
	}

	if err != nil {
		return err
	}
	r.writeStatus("\nManifest: %s\n", manifestPath)
	return nil
}
