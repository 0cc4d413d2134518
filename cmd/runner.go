package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/repositories"
	"github.com/desertthunder/setlistx/internal/services"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database is opened on first use so commands like setup work before it exists.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	db       *sql.DB
	ownsDB   bool
	now      func() time.Time
	copyText func(string) error
	bands    *repositories.BandRepository
	songs    *repositories.SongRepository
	tags     *repositories.TagRepository
	events   *repositories.EventRepository
	roster   *repositories.ParticipantRepository
	setlists *repositories.SetlistRepository
	service  *services.SetlistService
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Logger    *log.Logger
	Output    io.Writer
	DB        *sql.DB                 // Already migrated database; opened from Config when nil
	Now       func() time.Time        // Clock for upcoming/past decisions
	Clipboard func(text string) error // Defaults to the system clipboard
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		db:       opts.DB,
		now:      opts.Now,
		copyText: opts.Clipboard,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, bandCommand, songCommand, tagCommand, eventCommand, rosterCommand, setlistCommand,
		exportCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.service != nil {
		r.service = services.NewSetlistService(r.stores(), l)
	}
}

// open connects the repositories, opening and migrating the configured database if none was provided.
func (r *Runner) open() error {
	if r.service != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return err
		}
		r.db = db
		r.ownsDB = true
		r.logger.Debug("database opened", "path", r.config.Database.Path)
	}

	r.bands = repositories.NewBandRepository(r.db)
	r.songs = repositories.NewSongRepository(r.db)
	r.tags = repositories.NewTagRepository(r.db)
	r.events = repositories.NewEventRepository(r.db)
	r.roster = repositories.NewParticipantRepository(r.db)
	r.setlists = repositories.NewSetlistRepository(r.db)
	r.service = services.NewSetlistService(r.stores(), r.logger)
	return nil
}

func (r *Runner) stores() services.Stores {
	return services.Stores{
		Bands:        r.bands,
		Songs:        r.songs,
		Events:       r.events,
		Participants: r.roster,
		Setlists:     r.setlists,
	}
}

// Close releases the database if the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db, r.ownsDB, r.service = nil, false, nil
	return err
}

// resolveBand accepts a band ID or an exact (case-insensitive) band name.
func (r *Runner) resolveBand(ref string) (*models.Band, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: band", shared.ErrMissingArgument)
	}
	band, err := r.bands.Get(ref)
	if errors.Is(err, shared.ErrBandNotFound) {
		return r.bands.FindByName(ref)
	}
	return band, err
}

// resolveSong accepts a song ID or an exact (case-insensitive) song name.
func (r *Runner) resolveSong(ref string) (*models.Song, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: song", shared.ErrMissingArgument)
	}
	song, err := r.songs.Get(ref)
	if errors.Is(err, shared.ErrSongNotFound) {
		return r.songs.FindByName(ref)
	}
	return song, err
}

// resolveTag accepts a tag ID or an exact (case-insensitive) tag name.
func (r *Runner) resolveTag(ref string) (*models.Tag, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: tag", shared.ErrMissingArgument)
	}
	tag, err := r.tags.Get(ref)
	if errors.Is(err, shared.ErrTagNotFound) {
		return r.tags.FindByName(ref)
	}
	return tag, err
}

// bandNames maps every band ID to its name.
func (r *Runner) bandNames() (map[string]string, error) {
	bands, err := r.bands.List(nil)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(bands))
	for _, b := range bands {
		names[b.ID()] = b.Name
	}
	return names, nil
}

// position converts a 1-based setlist position argument to an index.
func position(cmd *cli.Command, name string) (int, error) {
	raw := cmd.StringArg(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	pos, err := strconv.Atoi(raw)
	if err != nil || pos < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return pos - 1, nil
}

// requireArg returns the named positional argument or ErrMissingArgument.
func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// optionalDate parses a YYYY-MM-DD flag, returning the zero time when unset.
func optionalDate(cmd *cli.Command, name string) (time.Time, error) {
	v := cmd.String(name)
	if v == "" {
		return time.Time{}, nil
	}
	return models.ParseDate(v)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
