package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/urfave/cli/v3"
)

func addOptions(cmd *cli.Command) setlist.AddOptions {
	return setlist.AddOptions{
		KeyPlayed: strings.TrimSpace(cmd.String("key-played")),
		Medley:    cmd.Bool("medley"),
		Group:     int(cmd.Int("group")),
	}
}

// printSetlist renders the edited setlist after a successful change.
func (r *Runner) printSetlist(status string, s setlist.Setlist) error {
	if err := r.writePlain("✓ %s\n", status); err != nil {
		return err
	}
	formatter.RenderSetlistTable(r.output, s)
	return nil
}

// SetlistShow prints an event's setlist.
func (r *Runner) SetlistShow(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	s, err := r.service.Get(eventID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := s.Entries()
		if entries == nil {
			entries = []models.SetlistEntry{}
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}
	formatter.RenderSetlistTable(r.output, s)
	return nil
}

// SetlistAdd appends a repertoire song, referenced by ID or name.
func (r *Runner) SetlistAdd(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
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
	s, err := r.service.Add(eventID, song.ID(), addOptions(cmd))
	if err != nil {
		return err
	}
	return r.printSetlist("Added "+song.Name, s)
}

// SetlistNewSong creates a song and appends it in one step.
func (r *Runner) SetlistNewSong(ctx context.Context, cmd *cli.Command) error {
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

	song := models.NewSong(name, cmd.String("key"))
	song.Author = strings.TrimSpace(cmd.String("author"))

	s, err := r.service.CreateAndAdd(eventID, song, addOptions(cmd))
	if err != nil {
		return err
	}
	return r.printSetlist("Created and added "+song.Name, s)
}

// SetlistRemove removes the entry at a 1-based position.
func (r *Runner) SetlistRemove(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	index, err := position(cmd, "position")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	s, err := r.service.Remove(eventID, index)
	if err != nil {
		return err
	}
	return r.printSetlist(fmt.Sprintf("Removed position %d", index+1), s)
}

// SetlistMove moves the entry at a 1-based position one place up or down.
func (r *Runner) SetlistMove(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	index, err := position(cmd, "position")
	if err != nil {
		return err
	}
	raw, err := requireArg(cmd, "direction")
	if err != nil {
		return err
	}
	dir, err := setlist.ParseDirection(raw)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	s, err := r.service.Move(eventID, index, dir)
	if err != nil {
		return err
	}
	return r.printSetlist(fmt.Sprintf("Moved position %d %s", index+1, dir), s)
}

// SetlistMedley puts an entry in a medley (a new one unless --group is set) or, with --off, takes it out.
func (r *Runner) SetlistMedley(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	index, err := position(cmd, "position")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	on := !cmd.Bool("off")
	s, err := r.service.ToggleMedley(eventID, index, on, int(cmd.Int("group")))
	if err != nil {
		return err
	}

	status := fmt.Sprintf("Position %d removed from its medley", index+1)
	if on {
		entry, _ := s.At(index)
		status = fmt.Sprintf("Position %d is in medley %d", index+1, entry.MedleyGroup)
	}
	return r.printSetlist(status, s)
}

// SetlistKey sets or clears the key an entry is played in.
func (r *Runner) SetlistKey(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	index, err := position(cmd, "position")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	keyPlayed := strings.TrimSpace(cmd.StringArg("key"))
	s, err := r.service.SetKey(eventID, index, keyPlayed)
	if err != nil {
		return err
	}

	status := fmt.Sprintf("Position %d plays in %s", index+1, keyPlayed)
	if keyPlayed == "" {
		status = fmt.Sprintf("Position %d uses its original key", index+1)
	}
	return r.printSetlist(status, s)
}

type groupOutput struct {
	Number int    `json:"number"`
	Label  string `json:"label"`
	Songs  int    `json:"songs"`
}

// SetlistGroups prints the medleys of an event.
func (r *Runner) SetlistGroups(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	groups, err := r.service.Groups(eventID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]groupOutput, 0, len(groups))
		for _, g := range groups {
			out = append(out, groupOutput{g.Number, g.Label(), len(g.Entries)})
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	if len(groups) == 0 {
		return r.writePlain("No medleys in this setlist.\n")
	}
	formatter.RenderMedleysTable(r.output, groups)
	return nil
}

// SetlistShare prints the WhatsApp message and link, optionally copying the message and rendering a QR code.
func (r *Runner) SetlistShare(ctx context.Context, cmd *cli.Command) error {
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

	phone := cmd.String("phone")
	if phone == "" {
		phone = r.config.Share.Phone
	}
	message := formatter.ShareMessage(sheet)
	link := formatter.ShareURL(message, phone)

	r.writePlain("%s\n\n", message)
	r.writePlain("Link: %s\n", link)

	if cmd.Bool("copy") {
		if err := r.copyText(message); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		r.writePlain("✓ Message copied to clipboard\n")
	}

	if path := cmd.String("qr"); path != "" {
		png, err := formatter.ShareQR(link, 0)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, png, 0644); err != nil {
			return fmt.Errorf("failed to write QR code: %w", err)
		}
		r.logger.Info("qr code written", "path", path)
		r.writePlain("✓ QR code saved to %s\n", path)
	}

	if cmd.Bool("qr-terminal") {
		qr, err := formatter.ShareQRTerminal(link)
		if err != nil {
			return err
		}
		r.writePlain("\n%s", qr)
	}
	return nil
}

// SetlistExport writes one event's setlist in the chosen format.
func (r *Runner) SetlistExport(ctx context.Context, cmd *cli.Command) error {
	eventID, err := requireArg(cmd, "event")
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
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

	if cmd.Bool("stdout") {
		data, err := formatter.Export(sheet, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	dir := cmd.String("output")
	if dir == "" {
		dir = r.config.Export.Dir
	}
	if dir == "" {
		dir = "."
	}

	path, err := formatter.WriteExport(sheet, format, dir)
	if err != nil {
		return err
	}
	r.logger.Info("setlist exported", "event", eventID, "path", path)
	return r.writePlain("✓ Exported to %s\n", path)
}
