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

// BandAdd creates a band.
func (r *Runner) BandAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	band := models.NewBand(name, cmd.String("description"))
	if err := r.bands.Create(band); err != nil {
		return fmt.Errorf("failed to create band: %w", err)
	}

	r.logger.Info("band created", "id", band.ID(), "name", band.Name)
	return r.writePlain("✓ Band created: %s (%s)\n", band.Name, band.ID())
}

// BandList prints all bands.
func (r *Runner) BandList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	bands, err := r.bands.List(map[string]any{"name": cmd.String("name")})
	if err != nil {
		return fmt.Errorf("failed to list bands: %w", err)
	}

	if cmd.Bool("json") {
		if bands == nil {
			bands = []*models.Band{}
		}
		return r.writeJSON(bands, cmd.Bool("pretty"))
	}

	if len(bands) == 0 {
		return r.writePlain("No bands yet. Create one with 'setlistx band add NAME'.\n")
	}
	formatter.RenderBandsTable(r.output, bands)
	return nil
}

// BandEdit renames a band or changes its description. Only the flags given are applied.
func (r *Runner) BandEdit(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "band")
	if err != nil {
		return err
	}
	if !cmd.IsSet("name") && !cmd.IsSet("description") {
		return fmt.Errorf("%w: nothing to change, pass --name or --description", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	band, err := r.resolveBand(ref)
	if err != nil {
		return err
	}
	if cmd.IsSet("name") {
		band.Name = strings.TrimSpace(cmd.String("name"))
	}
	if cmd.IsSet("description") {
		band.Description = strings.TrimSpace(cmd.String("description"))
	}
	if err := r.bands.Update(band); err != nil {
		return fmt.Errorf("failed to update band: %w", err)
	}

	r.logger.Info("band updated", "id", band.ID(), "name", band.Name)
	return r.writePlain("✓ Band updated: %s (%s)\n", band.Name, band.ID())
}

// BandRemove deletes a band. Bands that still have events are refused.
func (r *Runner) BandRemove(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "band")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	band, err := r.resolveBand(ref)
	if err != nil {
		return err
	}
	if err := r.bands.Delete(band.ID()); err != nil {
		return fmt.Errorf("failed to delete %s: %w", band.Name, err)
	}

	r.logger.Info("band deleted", "id", band.ID())
	return r.writePlain("✓ Band removed: %s\n", band.Name)
}
