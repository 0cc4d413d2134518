package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/urfave/cli/v3"
)

// tagCount is the JSON form of one row of tag list.
type tagCount struct {
	Tag   *models.Tag `json:"tag"`
	Songs int         `json:"songs"`
}

// TagAdd creates a tag.
func (r *Runner) TagAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}
	color, err := models.ParseTagColor(cmd.String("color"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	tag := models.NewTag(name, color)
	if err := r.tags.Create(tag); err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	r.logger.Info("tag created", "id", tag.ID(), "name", tag.Name, "color", tag.Color)
	return r.writePlain("✓ Tag created: %s %s (%s)\n", tag.Name, tag.Color, tag.ID())
}

// TagList prints tags with their song counts.
func (r *Runner) TagList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if ref := cmd.String("song"); ref != "" {
		song, err := r.resolveSong(ref)
		if err != nil {
			return err
		}
		criteria["song_id"] = song.ID()
	}

	tags, err := r.tags.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}
	counts, err := r.tags.SongCounts()
	if err != nil {
		return fmt.Errorf("failed to count tagged songs: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]tagCount, 0, len(tags))
		for _, t := range tags {
			out = append(out, tagCount{t, counts[t.ID()]})
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	if len(tags) == 0 {
		return r.writePlain("No tags found. Create one with 'setlistx tag add NAME'.\n")
	}
	formatter.RenderTagsTable(r.output, tags, counts)
	return nil
}

// TagEdit renames or recolors a tag. Only the flags given are applied.
func (r *Runner) TagEdit(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "tag")
	if err != nil {
		return err
	}
	if !cmd.IsSet("name") && !cmd.IsSet("color") {
		return fmt.Errorf("%w: nothing to change, pass --name or --color", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	tag, err := r.resolveTag(ref)
	if err != nil {
		return err
	}
	if cmd.IsSet("name") {
		tag.Name = strings.TrimSpace(cmd.String("name"))
	}
	if cmd.IsSet("color") {
		if tag.Color, err = models.ParseTagColor(cmd.String("color")); err != nil {
			return err
		}
	}
	if err := r.tags.Update(tag); err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}

	r.logger.Info("tag updated", "id", tag.ID(), "name", tag.Name, "color", tag.Color)
	return r.writePlain("✓ Tag updated: %s %s\n", tag.Name, tag.Color)
}

// TagRemove deletes a tag and detaches it from every song.
func (r *Runner) TagRemove(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "tag")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	tag, err := r.resolveTag(ref)
	if err != nil {
		return err
	}
	if err := r.tags.Delete(tag.ID()); err != nil {
		return fmt.Errorf("failed to delete %s: %w", tag.Name, err)
	}

	r.logger.Info("tag deleted", "id", tag.ID())
	return r.writePlain("✓ Tag removed: %s\n", tag.Name)
}
