package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SongAdd adds a song to the repertoire.
func (r *Runner) SongAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	song := models.NewSong(name, cmd.String("key"))
	song.Author = strings.TrimSpace(cmd.String("author"))
	if path := cmd.String("lyrics-file"); path != "" {
		if song.Lyrics, err = readLyrics(path); err != nil {
			return err
		}
	}

	if err := r.open(); err != nil {
		return err
	}
	if err := r.songs.Create(song); err != nil {
		return fmt.Errorf("failed to create song: %w", err)
	}

	r.logger.Info("song created", "id", song.ID(), "name", song.Name)
	return r.writePlain("✓ Song added: %s (%s)\n", song.Label(), song.ID())
}

// SongList prints the repertoire filtered by name, key and tag, optionally with play counts.
func (r *Runner) SongList(ctx context.Context, cmd *cli.Command) error {
	sort, err := models.ParseSongSort(cmd.String("sort"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	criteria := map[string]any{"name": cmd.String("name"), "key": cmd.String("key"), "sort": sort}
	if ref := cmd.String("tag"); ref != "" {
		tag, err := r.resolveTag(ref)
		if err != nil {
			return err
		}
		criteria["tag_id"] = tag.ID()
	}

	songs, err := r.songs.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}

	var plays map[string]int
	if cmd.Bool("plays") {
		if plays, err = r.setlists.PlayCounts(r.now()); err != nil {
			return fmt.Errorf("failed to count plays: %w", err)
		}
	}

	if cmd.Bool("json") {
		if plays != nil {
			type songPlays struct {
				Song  *models.Song `json:"song"`
				Plays int          `json:"plays"`
			}
			out := make([]songPlays, 0, len(songs))
			for _, s := range songs {
				out = append(out, songPlays{s, plays[s.ID()]})
			}
			return r.writeJSON(out, cmd.Bool("pretty"))
		}
		if songs == nil {
			songs = []*models.Song{}
		}
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	if len(songs) == 0 {
		return r.writePlain("No songs found.\n")
	}
	formatter.RenderSongsTable(r.output, songs, plays)
	return nil
}

// SongRemove deletes a song from the repertoire. Songs still in a setlist are refused.
func (r *Runner) SongRemove(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "song")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	song, err := r.resolveSong(ref)
	if err != nil {
		return err
	}
	if err := r.songs.Delete(song.ID()); err != nil {
		return fmt.Errorf("failed to delete %s: %w", song.Name, err)
	}

	r.logger.Info("song deleted", "id", song.ID())
	return r.writePlain("✓ Song removed: %s\n", song.Name)
}

// SongEdit changes a song's name, key, author or lyrics. Only the flags given are applied.
func (r *Runner) SongEdit(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "song")
	if err != nil {
		return err
	}
	if !cmd.IsSet("name") && !cmd.IsSet("key") && !cmd.IsSet("author") && !cmd.IsSet("lyrics-file") {
		return fmt.Errorf("%w: nothing to change, pass --name, --key, --author or --lyrics-file", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	song, err := r.resolveSong(ref)
	if err != nil {
		return err
	}
	if cmd.IsSet("name") {
		song.Name = strings.TrimSpace(cmd.String("name"))
	}
	if cmd.IsSet("key") {
		song.OriginalKey = strings.TrimSpace(cmd.String("key"))
	}
	if cmd.IsSet("author") {
		song.Author = strings.TrimSpace(cmd.String("author"))
	}
	if cmd.IsSet("lyrics-file") {
		if song.Lyrics, err = readLyrics(cmd.String("lyrics-file")); err != nil {
			return err
		}
	}
	if err := r.songs.Update(song); err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	r.logger.Info("song updated", "id", song.ID(), "name", song.Name)
	return r.writePlain("✓ Song updated: %s (%s)\n", song.Label(), song.ID())
}

// SongTag labels a song with an existing tag.
func (r *Runner) SongTag(ctx context.Context, cmd *cli.Command) error {
	song, tag, err := r.songAndTag(cmd)
	if err != nil {
		return err
	}
	if err := r.tags.Attach(song.ID(), tag.ID()); err != nil {
		return err
	}

	r.logger.Info("song tagged", "song", song.ID(), "tag", tag.Name)
	return r.writePlain("✓ %s tagged %s\n", song.Name, tag.Name)
}

// SongUntag removes a tag from a song.
func (r *Runner) SongUntag(ctx context.Context, cmd *cli.Command) error {
	song, tag, err := r.songAndTag(cmd)
	if err != nil {
		return err
	}
	if err := r.tags.Detach(song.ID(), tag.ID()); err != nil {
		return err
	}

	r.logger.Info("song untagged", "song", song.ID(), "tag", tag.Name)
	return r.writePlain("✓ %s no longer tagged %s\n", song.Name, tag.Name)
}

func (r *Runner) songAndTag(cmd *cli.Command) (*models.Song, *models.Tag, error) {
	songRef, err := requireArg(cmd, "song")
	if err != nil {
		return nil, nil, err
	}
	tagRef, err := requireArg(cmd, "tag")
	if err != nil {
		return nil, nil, err
	}
	if err := r.open(); err != nil {
		return nil, nil, err
	}

	song, err := r.resolveSong(songRef)
	if err != nil {
		return nil, nil, err
	}
	tag, err := r.resolveTag(tagRef)
	if err != nil {
		return nil, nil, err
	}
	return song, tag, nil
}

func readLyrics(path string) (string, error) {
	lyrics, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read lyrics: %w", err)
	}
	return string(lyrics), nil
}
