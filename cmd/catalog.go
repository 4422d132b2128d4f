package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listenx/internal/formatter"
	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/shared"
)

// Playlists lists one page of a provider's playlists as a table or JSON.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	offset := cmd.Int("offset")
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", shared.ErrInvalidArgument)
	}

	agg, err := r.aggregator()
	if err != nil {
		return err
	}

	page, err := agg.GetPlaylists(ctx, r.provider(cmd), models.ListParams{
		FilterID: cmd.String("filter"),
		Offset:   offset,
	}, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	if _, err := r.output.Write(formatter.ExportPlaylists(page)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Playlist fetches a playlist with its tracks and renders it to stdout or --output.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	agg, err := r.aggregator()
	if err != nil {
		return err
	}

	progress, wait := r.progressPrinter()
	pl, err := agg.GetPlaylistWithTracks(ctx, r.provider(cmd), cmd.String("id"), progress)
	wait()
	if err != nil {
		return err
	}

	data, err := formatter.Render(pl, f)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		r.writeStatus("%s\n", r.palette.OK.Render(fmt.Sprintf("✓ %s (%d tracks) saved to %s", pl.Title, len(pl.Tracks), path)))
	} else if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if n := len(pl.Failed); n > 0 {
		r.writeStatus("%s\n", r.palette.Warn.Render(fmt.Sprintf("%d tracks could not be resolved", n)))
	}

	if cmd.Bool("open") {
		if err := shared.OpenURL(pl.SourceURL); err != nil {
			r.logger.Warn("failed to open browser", "url", pl.SourceURL, "err", err)
		}
	}
	return nil
}

// Lyric prints a track's lyric, followed by the translation when there is one.
func (r *Runner) Lyric(ctx context.Context, cmd *cli.Command) error {
	agg, err := r.aggregator()
	if err != nil {
		return err
	}

	lyric, err := agg.Lyric(ctx, r.provider(cmd), cmd.String("id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(lyric, true)
	}

	fmt.Fprintln(r.output, lyric.Lyric)
	if lyric.Translated != "" {
		fmt.Fprintf(r.output, "\n%s\n", lyric.Translated)
	}
	return nil
}
