// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listenx/internal/formatter"
	"github.com/desertthunder/listenx/internal/models"
)

var formatUsage = func() string {
	names := []string{}
	for _, f := range formatter.Formats() {
		names = append(names, string(f))
	}
	return "Output format (" + strings.Join(names, ", ") + ")"
}()

func providerFlag(value string) *cli.StringFlag {
	names := []string{}
	for _, p := range models.Providers() {
		names = append(names, string(p))
	}
	return &cli.StringFlag{
		Name:    "provider",
		Aliases: []string{"p"},
		Usage:   "Catalog provider (" + strings.Join(names, ", ") + "), defaults to aggregate.default_provider",
		Value:   value,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		playlistsCommand, playlistCommand, exportCommand, lyricCommand, browseCommand, serveCommand, signCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// playlistsCommand lists one page of a provider's playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"ls"},
		Usage:   "List one page of playlists",
		Flags: []cli.Flag{
			providerFlag(""),
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Provider category to list",
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Zero-based playlist offset",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Playlists,
	}
}

// playlistCommand fetches one playlist with its tracks
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Fetch a playlist with its tracks",
		Flags: []cli.Flag{
			providerFlag(""),
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Native playlist ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   formatUsage,
				Value:   string(formatter.JSON),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the playlist page in a browser",
			},
		},
		Action: r.Playlist,
	}
}

// exportCommand exports several playlists to a directory
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export several playlists with a manifest",
		Flags: []cli.Flag{
			providerFlag(""),
			&cli.StringSliceFlag{
				Name:     "ids",
				Usage:    "Native playlist IDs (repeat or comma-separate)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   formatUsage,
				Value:   string(formatter.JSON),
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Output directory (default: {provider}_export_{epoch})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Playlists exported concurrently (max 4)",
				Value: 2,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Playlists started per second, 0 for unlimited",
			},
			&cli.BoolFlag{
				Name:  "cover",
				Usage: "Download cover images next to markdown exports",
			},
		},
		Action: r.Export,
	}
}

// lyricCommand prints a track's lyric
func lyricCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lyric",
		Usage: "Print the lyric of a track",
		Flags: []cli.Flag{
			providerFlag(string(models.Netease)),
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Native track ID",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Lyric,
	}
}

// browseCommand returns the interactive catalog browser.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Browse playlists interactively",
		Flags: []cli.Flag{
			providerFlag(""),
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Provider category to list",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export " + strings.ToLower(formatUsage),
				Value:   string(formatter.JSON),
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Export directory",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file while the TUI owns the terminal (default: $TMPDIR/listenx-tui.log)",
			},
		},
		Action: r.Browse,
	}
}

// serveCommand starts the HTTP facade
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog as a JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.addr)",
			},
		},
		Action: r.Serve,
	}
}

// signCommand exposes the weapi signer for debugging
func signCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a JSON payload for Netease weapi endpoints",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "JSON payload to sign",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "key",
				Usage: "16-character session key (default: random)",
			},
			&cli.BoolFlag{
				Name:  "decrypt",
				Usage: "Decrypt the result again and print the session key and plaintext",
			},
		},
		Action: r.Sign,
	}
}

// configCommand handles configuration files
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Destination path",
						Value: "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: r.ConfigShow,
			},
		},
	}
}
