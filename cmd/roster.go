package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/urfave/cli/v3"
)

// RosterAdd adds a participant to an event.
func (r *Runner) RosterAdd(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	event, err := r.events.Get(eventID)
	if err != nil {
		return err
	}

	p := models.NewParticipant(event.ID(), name, cmd.String("instrument"))
	if err := r.roster.Create(p); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}

	r.logger.Info("participant added", "event", event.ID(), "id", p.ID())
	return r.writePlain("✓ %s added to %s (%s)\n", p.Name, event.Name, p.ID())
}

// RosterList prints the participants of an event.
func (r *Runner) RosterList(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if _, err := r.events.Get(eventID); err != nil {
		return err
	}
	participants, err := r.roster.List(map[string]any{"event_id": eventID})
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}

	if cmd.Bool("json") {
		if participants == nil {
			participants = []*models.Participant{}
		}
		return r.writeJSON(participants, cmd.Bool("pretty"))
	}

	if len(participants) == 0 {
		return r.writePlain("No participants yet.\n")
	}
	formatter.RenderRosterTable(r.output, participants)
	return nil
}

// RosterRemove removes a participant by ID.
func (r *Runner) RosterRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "participant")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.roster.Delete(id); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return r.writePlain("✓ Participant removed\n")
}
