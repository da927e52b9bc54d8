// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "date",
		Aliases: []string{"d"},
		Usage:   "Broadcast date (YYYY-MM-DD, defaults to today)",
	}
}

// setupCommand handles database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SetupDatabase,
	}
}

// authCommand handles Spotify authentication.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Auth,
	}
}

// fetchCommand fetches a program's daily song listing.
func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch a program's song listing for one broadcast date",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "program"},
		},
		Flags: []cli.Flag{
			configFlag(),
			dateFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Bypass the song cache",
			},
		},
		Action: r.Fetch,
	}
}

// resolveCommand resolves a single song against the catalog.
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a (title, artist) pair to a Spotify track",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "title"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Artist as listed by the broadcaster",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Resolve,
	}
}

// dailyCommand runs the full pipeline for every configured program.
func dailyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "daily",
		Usage: "Build playlists for every configured program for one date",
		Flags: []cli.Flag{
			configFlag(),
			dateFlag(),
			&cli.StringFlag{
				Name:  "program",
				Usage: "Limit the run to a single program (prog_code or name)",
			},
		},
		Action: r.Daily,
	}
}

// playlistsCommand lists persisted playlist records.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List generated playlists",
		Flags: []cli.Flag{
			configFlag(),
			dateFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records to return",
				Value: 20,
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

// serveCommand starts the status HTTP server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve generated playlist records over HTTP",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}
