// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags(prettyDefault bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: prettyDefault,
		},
	}
}

// serveCommand starts the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand writes a config file and prepares the SQLite database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and run database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

// chatCommand asks the recommendation assistant
func chatCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Ask for recommendations from the catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags:  outputFlags(false),
		Action: r.Chat,
	}
}

// searchCommand queries external providers
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search YouTube, Spotify and Last.fm",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "platform",
				Usage: "Provider to query: all, youtube, spotify or lastfm",
				Value: "all",
			},
		}, outputFlags(false)...),
		Action: r.SearchExternal,
	}
}

// trendingCommand lists the most played tracks
func trendingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "trending",
		Usage:  "List trending catalog tracks",
		Flags:  outputFlags(false),
		Action: r.Trending,
	}
}

// playlistsCommand handles playlist operations
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  outputFlags(false),
				Action: r.ListPlaylists,
			},
			{
				Name:  "export",
				Usage: "Export a playlist with its tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to export",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown or text",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (file base, directory or file depending on format)",
					},
				},
				Action: r.ExportPlaylist,
			},
		},
	}
}
