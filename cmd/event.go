package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/desertthunder/setlistx/internal/tasks"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

// EventAdd schedules an event for a band.
func (r *Runner) EventAdd(ctx context.Context, cmd *cli.Command) error {
	date, err := models.ParseDate(cmd.String("date"))
	if err != nil {
		return err
	}
	kind, err := models.ParseEventKind(cmd.String("kind"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	band, err := r.resolveBand(cmd.String("band"))
	if err != nil {
		return err
	}

	event := models.NewEvent(band.ID(), cmd.String("name"), date)
	event.Kind = kind
	event.Notes = strings.TrimSpace(cmd.String("notes"))
	event.YouTubeLink = strings.TrimSpace(cmd.String("youtube"))
	event.Leader = strings.TrimSpace(cmd.String("leader"))

	if err := r.events.Create(event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	r.logger.Info("event created", "id", event.ID(), "band", band.Name, "date", event.DateString())
	return r.writePlain("✓ Event created: %s on %s (%s)\n", event.Name, event.DateString(), event.ID())
}

// EventList prints events, filtered by band, dates, song, search text and upcoming/past.
func (r *Runner) EventList(ctx context.Context, cmd *cli.Command) error {
	from, err := optionalDate(cmd, "from")
	if err != nil {
		return err
	}
	to, err := optionalDate(cmd, "to")
	if err != nil {
		return err
	}
	when := cmd.String("when")
	if when != "" && when != "upcoming" && when != "past" {
		return fmt.Errorf("%w: --when must be upcoming or past, got %q", shared.ErrInvalidFlag, when)
	}
	if err := r.open(); err != nil {
		return err
	}

	criteria := map[string]any{"from": from, "to": to}
	if ref := cmd.String("band"); ref != "" {
		band, err := r.resolveBand(ref)
		if err != nil {
			return err
		}
		criteria["band_id"] = band.ID()
	}
	if ref := cmd.String("song"); ref != "" {
		song, err := r.resolveSong(ref)
		if err != nil {
			return err
		}
		criteria["song_id"] = song.ID()
	}

	events, err := r.events.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	names, err := r.bandNames()
	if err != nil {
		return fmt.Errorf("failed to list bands: %w", err)
	}

	events = tasks.FilterEvents(events, names, tasks.EventFilter{Search: cmd.String("search")})
	upcoming, past := tasks.Partition(events, r.now())
	switch when {
	case "upcoming":
		events = upcoming
	case "past":
		events = past
	}

	if cmd.Bool("json") {
		if events == nil {
			events = []*models.Event{}
		}
		return r.writeJSON(events, cmd.Bool("pretty"))
	}

	if len(events) == 0 {
		return r.writePlain("No events found.\n")
	}
	formatter.RenderEventsTable(r.output, events, names)
	return nil
}

// EventShow prints an event with its setlist, medleys and roster.
func (r *Runner) EventShow(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	sheet, err := r.service.Detail(eventID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.ExportToJSON(sheet)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	event := sheet.Event
	r.writePlainHeader(event.Name)
	if band := sheet.BandName(); band != "" {
		r.writePlain("Band: %s\n", band)
	}
	r.writePlain("Date: %s (%s)\n", event.DateString(), event.Kind)
	if event.Leader != "" {
		r.writePlain("Leader: %s\n", event.Leader)
	}
	if event.YouTubeLink != "" {
		r.writePlain("YouTube: %s\n", event.YouTubeLink)
	}
	if event.Notes != "" {
		r.writePlain("Notes: %s\n", event.Notes)
	}
	r.writePlain("\n")

	formatter.RenderSetlistTable(r.output, sheet.Setlist)
	if groups := sheet.Setlist.MedleyGroups(); len(groups) > 0 {
		r.writePlain("\n")
		formatter.RenderMedleysTable(r.output, groups)
	}
	if len(sheet.Participants) > 0 {
		r.writePlain("\n")
		formatter.RenderRosterTable(r.output, sheet.Participants)
	}
	return nil
}

type statsOutput struct {
	Events tasks.EventStats `json:"events"`
	Songs  []tasks.SongStat `json:"songs"`
}

// EventStats prints the event counters and the most played songs up to today.
func (r *Runner) EventStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	now := r.now()
	events, err := r.events.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	songs, err := r.songs.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}
	plays, err := r.setlists.PlayCounts(now)
	if err != nil {
		return fmt.Errorf("failed to count plays: %w", err)
	}

	out := statsOutput{
		Events: tasks.Stats(events, now),
		Songs:  tasks.SongStats(plays, songs, int(cmd.Int("top"))),
	}
	if out.Songs == nil {
		out.Songs = []tasks.SongStat{}
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Events")
	r.writePlain("Total: %d\n", out.Events.Total)
	r.writePlain("Upcoming: %d\n", out.Events.Upcoming)
	r.writePlain("This month: %d\n", out.Events.ThisMonth)

	if len(out.Songs) > 0 {
		r.writePlainln("Most played songs")
		ranked := make([]*models.Song, len(out.Songs))
		for i, s := range out.Songs {
			ranked[i] = s.Song
		}
		formatter.RenderSongsTable(r.output, ranked, plays)
	}
	return nil
}

// EventRemove deletes an event.
func (r *Runner) EventRemove(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
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
	if err := r.events.Delete(event.ID()); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	r.logger.Info("event deleted", "id", event.ID())
	return r.writePlain("✓ Event removed: %s (%s)\n", event.Name, event.DateString())
}

// EventEdit changes an event's details. Only the flags given are applied.
func (r *Runner) EventEdit(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	if !lo.SomeBy([]string{"band", "name", "date", "kind", "notes", "youtube", "leader"}, cmd.IsSet) {
		return fmt.Errorf("%w: nothing to change, pass at least one flag", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	event, err := r.events.Get(eventID)
	if err != nil {
		return err
	}
	if cmd.IsSet("band") {
		band, err := r.resolveBand(cmd.String("band"))
		if err != nil {
			return err
		}
		event.BandID = band.ID()
	}
	if cmd.IsSet("name") {
		event.Name = strings.TrimSpace(cmd.String("name"))
	}
	if cmd.IsSet("date") {
		date, err := models.ParseDate(cmd.String("date"))
		if err != nil {
			return err
		}
		event.Date = date
	}
	if cmd.IsSet("kind") {
		if event.Kind, err = models.ParseEventKind(cmd.String("kind")); err != nil {
			return err
		}
	}
	if cmd.IsSet("notes") {
		event.Notes = strings.TrimSpace(cmd.String("notes"))
	}
	if cmd.IsSet("youtube") {
		event.YouTubeLink = strings.TrimSpace(cmd.String("youtube"))
	}
	if cmd.IsSet("leader") {
		event.Leader = strings.TrimSpace(cmd.String("leader"))
	}

	if err := r.events.Update(event); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	r.logger.Info("event updated", "id", event.ID(), "date", event.DateString())
	return r.writePlain("✓ Event updated: %s on %s (%s)\n", event.Name, event.DateString(), event.ID())
}
