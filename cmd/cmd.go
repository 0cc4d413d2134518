// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func eventArg() cli.Argument {
	return &cli.StringArg{Name: "event", UsageText: "event ID"}
}

func songArg() cli.Argument {
	return &cli.StringArg{Name: "song", UsageText: "song ID or name"}
}

func tagArg() cli.Argument {
	return &cli.StringArg{Name: "tag", UsageText: "tag ID or name"}
}

// bandCommand manages bands
func bandCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "band",
		Usage: "Manage bands",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a band",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "description",
						Usage: "Band description",
					},
				},
				Action: r.BandAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List bands",
				Flags: append(jsonFlags(),
					&cli.StringFlag{
						Name:  "name",
						Usage: "Only bands whose name contains this text",
					},
				),
				Action: r.BandList,
			},
			{
				Name:      "edit",
				Usage:     "Rename a band or change its description",
				Arguments: []cli.Argument{&cli.StringArg{Name: "band", UsageText: "band ID or name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "New name",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "New description",
					},
				},
				Action: r.BandEdit,
			},
			{
				Name:      "rm",
				Usage:     "Delete a band that has no events",
				Arguments: []cli.Argument{&cli.StringArg{Name: "band", UsageText: "band ID or name"}},
				Action:    r.BandRemove,
			},
		},
	}
}

// songCommand manages the song repertoire
func songCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "song",
		Usage: "Manage the song repertoire",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a song to the repertoire",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "key",
						Usage: "Original key",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Song author",
					},
					&cli.StringFlag{
						Name:  "lyrics-file",
						Usage: "Read lyrics from this file",
					},
				},
				Action: r.SongAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List songs",
				Flags: append(jsonFlags(),
					&cli.StringFlag{
						Name:  "name",
						Usage: "Only songs whose name contains this text",
					},
					&cli.StringFlag{
						Name:  "key",
						Usage: "Only songs in this original key",
					},
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Only songs carrying this tag (ID or name)",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "name, key, recent or popular",
						Value: "name",
					},
					&cli.BoolFlag{
						Name:  "plays",
						Usage: "Include how many events each song was played at",
					},
				),
				Action: r.SongList,
			},
			{
				Name:      "edit",
				Usage:     "Change a song's name, key, author or lyrics",
				Arguments: []cli.Argument{songArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "New name",
					},
					&cli.StringFlag{
						Name:  "key",
						Usage: "Original key; empty clears it",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Song author; empty clears it",
					},
					&cli.StringFlag{
						Name:  "lyrics-file",
						Usage: "Replace lyrics with the contents of this file",
					},
				},
				Action: r.SongEdit,
			},
			{
				Name:      "rm",
				Usage:     "Remove a song that is not used by any setlist",
				Arguments: []cli.Argument{songArg()},
				Action:    r.SongRemove,
			},
			{
				Name:      "tag",
				Usage:     "Label a song with a tag",
				Arguments: []cli.Argument{songArg(), tagArg()},
				Action:    r.SongTag,
			},
			{
				Name:      "untag",
				Usage:     "Remove a tag from a song",
				Arguments: []cli.Argument{songArg(), tagArg()},
				Action:    r.SongUntag,
			},
		},
	}
}

// tagCommand manages song tags
func tagCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "Manage song tags",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a tag",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "color",
						Aliases: []string{"c"},
						Usage:   "Preset color name or #rrggbb",
					},
				},
				Action: r.TagAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List tags with how many songs carry each",
				Flags: append(jsonFlags(),
					&cli.StringFlag{
						Name:  "song",
						Usage: "Only tags on this song (ID or name)",
					},
				),
				Action: r.TagList,
			},
			{
				Name:      "edit",
				Usage:     "Rename or recolor a tag",
				Arguments: []cli.Argument{tagArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "New name",
					},
					&cli.StringFlag{
						Name:    "color",
						Aliases: []string{"c"},
						Usage:   "Preset color name or #rrggbb",
					},
				},
				Action: r.TagEdit,
			},
			{
				Name:      "rm",
				Usage:     "Delete a tag and detach it from every song",
				Arguments: []cli.Argument{tagArg()},
				Action:    r.TagRemove,
			},
		},
	}
}

// eventCommand manages events
func eventCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "event",
		Usage: "Manage events",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Schedule an event",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "band",
						Aliases:  []string{"b"},
						Usage:    "Band ID or name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Event name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "date",
						Aliases:  []string{"d"},
						Usage:    "Event day (YYYY-MM-DD)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "sunday_service, wednesday_service or special",
						Value: "sunday_service",
					},
					&cli.StringFlag{
						Name:  "notes",
						Usage: "Free-form notes",
					},
					&cli.StringFlag{
						Name:  "youtube",
						Usage: "YouTube link",
					},
					&cli.StringFlag{
						Name:  "leader",
						Usage: "Worship leader",
					},
				},
				Action: r.EventAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List events",
				Flags: append(jsonFlags(),
					&cli.StringFlag{
						Name:    "band",
						Aliases: []string{"b"},
						Usage:   "Band ID or name",
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "First day (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Last day (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "song",
						Usage: "Only events whose setlist contains this song (ID or name)",
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Match event or band name",
					},
					&cli.StringFlag{
						Name:  "when",
						Usage: "upcoming or past",
					},
				),
				Action: r.EventList,
			},
			{
				Name:      "show",
				Usage:     "Show an event with its setlist and roster",
				Arguments: []cli.Argument{eventArg()},
				Flags:     jsonFlags(),
				Action:    r.EventShow,
			},
			{
				Name:  "stats",
				Usage: "Show event counters and the most played songs",
				Flags: append(jsonFlags(),
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of songs to rank",
						Value: 10,
					},
				),
				Action: r.EventStats,
			},
			{
				Name:      "edit",
				Usage:     "Change an event's details",
				Arguments: []cli.Argument{eventArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "band",
						Aliases: []string{"b"},
						Usage:   "Move the event to this band (ID or name)",
					},
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Event name",
					},
					&cli.StringFlag{
						Name:    "date",
						Aliases: []string{"d"},
						Usage:   "Event day (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "sunday_service, wednesday_service or special",
					},
					&cli.StringFlag{
						Name:  "notes",
						Usage: "Free-form notes; empty clears them",
					},
					&cli.StringFlag{
						Name:  "youtube",
						Usage: "YouTube link; empty clears it",
					},
					&cli.StringFlag{
						Name:  "leader",
						Usage: "Worship leader; empty clears it",
					},
				},
				Action: r.EventEdit,
			},
			{
				Name:      "rm",
				Usage:     "Delete an event",
				Arguments: []cli.Argument{eventArg()},
				Action:    r.EventRemove,
			},
		},
	}
}

// rosterCommand manages who plays at an event
func rosterCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "roster",
		Usage: "Manage event participants",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a participant to an event",
				Arguments: []cli.Argument{eventArg(), &cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "instrument",
						Aliases: []string{"i"},
						Usage:   "Instrument played",
					},
				},
				Action: r.RosterAdd,
			},
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List an event's participants",
				Arguments: []cli.Argument{eventArg()},
				Flags:     jsonFlags(),
				Action:    r.RosterList,
			},
			{
				Name:      "rm",
				Usage:     "Remove a participant",
				Arguments: []cli.Argument{&cli.StringArg{Name: "participant", UsageText: "participant ID"}},
				Action:    r.RosterRemove,
			},
		},
	}
}

func addFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "key-played",
			Usage: "Key to play the song in, when different from its original key",
		},
		&cli.BoolFlag{
			Name:  "medley",
			Usage: "Add as part of a medley",
		},
		&cli.IntFlag{
			Name:  "group",
			Usage: "Medley group to join; 0 starts a new one",
		},
	}
}

// setlistCommand edits and shares one event's setlist. Positions are 1-based.
func setlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "setlist",
		Aliases: []string{"sl"},
		Usage:   "Edit and share an event's setlist",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show the setlist",
				Arguments: []cli.Argument{eventArg()},
				Flags:     jsonFlags(),
				Action:    r.SetlistShow,
			},
			{
				Name:      "add",
				Usage:     "Append a repertoire song",
				Arguments: []cli.Argument{eventArg(), &cli.StringArg{Name: "song", UsageText: "song ID or name"}},
				Flags:     addFlags(),
				Action:    r.SetlistAdd,
			},
			{
				Name:      "new-song",
				Usage:     "Create a song and append it",
				Arguments: []cli.Argument{eventArg(), &cli.StringArg{Name: "name"}},
				Flags: append(addFlags(),
					&cli.StringFlag{
						Name:  "key",
						Usage: "Original key",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Song author",
					},
				),
				Action: r.SetlistNewSong,
			},
			{
				Name:      "rm",
				Usage:     "Remove the entry at a position",
				Arguments: []cli.Argument{eventArg(), &cli.StringArg{Name: "position"}},
				Action:    r.SetlistRemove,
			},
			{
				Name:  "move",
				Usage: "Move the entry at a position up or down",
				Arguments: []cli.Argument{
					eventArg(),
					&cli.StringArg{Name: "position"},
					&cli.StringArg{Name: "direction", UsageText: "up or down"},
				},
				Action: r.SetlistMove,
			},
			{
				Name:      "medley",
				Usage:     "Put the entry at a position in a medley, or take it out",
				Arguments: []cli.Argument{eventArg(), &cli.StringArg{Name: "position"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "off",
						Usage: "Take the entry out of its medley",
					},
					&cli.IntFlag{
						Name:  "group",
						Usage: "Medley group to join; 0 starts a new one",
					},
				},
				Action: r.SetlistMedley,
			},
			{
				Name:  "key",
				Usage: "Set the key played for the entry at a position; omit the key to clear it",
				Arguments: []cli.Argument{
					eventArg(),
					&cli.StringArg{Name: "position"},
					&cli.StringArg{Name: "key"},
				},
				Action: r.SetlistKey,
			},
			{
				Name:      "groups",
				Usage:     "List the medleys",
				Arguments: []cli.Argument{eventArg()},
				Flags:     jsonFlags(),
				Action:    r.SetlistGroups,
			},
			{
				Name:      "share",
				Usage:     "Print a WhatsApp message and link for the setlist",
				Arguments: []cli.Argument{eventArg()},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "copy",
						Usage: "Copy the message to the clipboard",
					},
					&cli.StringFlag{
						Name:  "qr",
						Usage: "Write a QR code PNG of the share link to this file",
					},
					&cli.BoolFlag{
						Name:  "qr-terminal",
						Usage: "Print the share link as a QR code",
					},
					&cli.StringFlag{
						Name:  "phone",
						Usage: "Recipient phone number (defaults to share.phone from config)",
					},
				},
				Action: r.SetlistShare,
			},
			{
				Name:      "export",
				Usage:     "Export the setlist to a file",
				Arguments: []cli.Argument{eventArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown, txt, html or json",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (defaults to export.dir from config, then the working directory)",
					},
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "Print instead of writing a file",
					},
				},
				Action: r.SetlistExport,
			},
		},
	}
}

// exportCommand bulk exports setlists
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the setlists of many events at once",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "band",
				Aliases: []string{"b"},
				Usage:   "Band ID or name",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "First day (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Last day (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "csv, markdown, txt, html or json (defaults to export.format from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (defaults to export.dir from config, then setlists_<timestamp>)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent workers (defaults to export.workers from config)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Events loaded per second, 0 for no limit",
			},
		},
		Action: r.Export,
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API and share redirect",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (defaults to server.port from config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive setlist editing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Edit an event's setlist interactively",
		Arguments: []cli.Argument{eventArg()},
		Action:    r.TUI,
	}
}
