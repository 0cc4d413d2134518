package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
)

// TagStore is the read side of song tags the API needs.
type TagStore interface {
	Get(id string) (*models.Tag, error)
	FindByName(name string) (*models.Tag, error)
	List(criteria map[string]any) ([]*models.Tag, error)
	SongCounts() (map[string]int, error)
}

// Catalog bundles the repositories behind the band, song, event and tag endpoints.
type Catalog struct {
	Bands  models.Repository[*models.Band]
	Songs  models.Repository[*models.Song]
	Events models.Repository[*models.Event]
	Tags   TagStore
}

// Update bodies use pointers so an omitted field keeps its value and "" clears it.

type bandUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type songUpdate struct {
	Name        *string `json:"name"`
	OriginalKey *string `json:"original_key"`
	Author      *string `json:"author"`
	Lyrics      *string `json:"lyrics"`
}

type eventUpdate struct {
	BandID      *string `json:"band_id"`
	Name        *string `json:"name"`
	Date        *string `json:"date"`
	Kind        *string `json:"kind"`
	Notes       *string `json:"notes"`
	YouTubeLink *string `json:"youtube_link"`
	Leader      *string `json:"leader"`
}

type tagResponse struct {
	Tag   *models.Tag `json:"tag"`
	Songs int         `json:"songs"`
}

func (a *API) listBands(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if name := r.URL.Query().Get("name"); name != "" {
		criteria["name"] = name
	}

	bands, err := a.catalog.Bands.List(criteria)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if bands == nil {
		bands = []*models.Band{}
	}
	writeJSON(w, http.StatusOK, bands)
}

func (a *API) updateBand(w http.ResponseWriter, r *http.Request) {
	var req bandUpdate
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	band, err := a.catalog.Bands.Get(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	assign(&band.Name, req.Name)
	assign(&band.Description, req.Description)

	if err := a.catalog.Bands.Update(band); err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("band updated", "id", band.ID())
	writeJSON(w, http.StatusOK, band)
}

func (a *API) deleteBand(w http.ResponseWriter, r *http.Request) {
	a.deleteRecord(w, "band", r.PathValue("id"), a.catalog.Bands.Delete)
}

// listSongs filters by name, key and tag (ID or name) and orders by ?sort=name|key|recent|popular.
func (a *API) listSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort, err := models.ParseSongSort(q.Get("sort"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	criteria := map[string]any{"sort": sort}
	for _, key := range []string{"name", "key"} {
		if v := q.Get(key); v != "" {
			criteria[key] = v
		}
	}
	if ref := q.Get("tag"); ref != "" {
		tag, err := a.resolveTag(ref)
		if err != nil {
			a.writeError(w, err)
			return
		}
		criteria["tag_id"] = tag.ID()
	}

	songs, err := a.catalog.Songs.List(criteria)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if songs == nil {
		songs = []*models.Song{}
	}
	writeJSON(w, http.StatusOK, songs)
}

func (a *API) updateSong(w http.ResponseWriter, r *http.Request) {
	var req songUpdate
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	song, err := a.catalog.Songs.Get(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	assign(&song.Name, req.Name)
	assign(&song.OriginalKey, req.OriginalKey)
	assign(&song.Author, req.Author)
	if req.Lyrics != nil {
		song.Lyrics = *req.Lyrics
	}

	if err := a.catalog.Songs.Update(song); err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("song updated", "id", song.ID())
	writeJSON(w, http.StatusOK, song)
}

// deleteSong answers 409 while the song is still placed in a setlist.
func (a *API) deleteSong(w http.ResponseWriter, r *http.Request) {
	a.deleteRecord(w, "song", r.PathValue("id"), a.catalog.Songs.Delete)
}

func (a *API) listTags(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if songID := r.URL.Query().Get("song_id"); songID != "" {
		criteria["song_id"] = songID
	}

	tags, err := a.catalog.Tags.List(criteria)
	if err != nil {
		a.writeError(w, err)
		return
	}
	counts, err := a.catalog.Tags.SongCounts()
	if err != nil {
		a.writeError(w, err)
		return
	}

	out := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagResponse{Tag: t, Songs: counts[t.ID()]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventUpdate
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	event, err := a.catalog.Events.Get(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	if req.BandID != nil {
		band, err := a.catalog.Bands.Get(*req.BandID)
		if err != nil {
			a.writeError(w, err)
			return
		}
		event.BandID = band.ID()
	}
	if req.Date != nil {
		if event.Date, err = models.ParseDate(*req.Date); err != nil {
			a.writeError(w, err)
			return
		}
	}
	if req.Kind != nil {
		if event.Kind, err = models.ParseEventKind(*req.Kind); err != nil {
			a.writeError(w, err)
			return
		}
	}
	assign(&event.Name, req.Name)
	assign(&event.Notes, req.Notes)
	assign(&event.YouTubeLink, req.YouTubeLink)
	assign(&event.Leader, req.Leader)

	if err := a.catalog.Events.Update(event); err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("event updated", "id", event.ID(), "date", event.DateString())
	writeJSON(w, http.StatusOK, event)
}

func (a *API) deleteEvent(w http.ResponseWriter, r *http.Request) {
	a.deleteRecord(w, "event", r.PathValue("id"), a.catalog.Events.Delete)
}

func (a *API) deleteRecord(w http.ResponseWriter, kind, id string, del func(string) error) {
	if err := del(id); err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info(kind+" deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// resolveTag accepts a tag ID or an exact (case-insensitive) tag name.
func (a *API) resolveTag(ref string) (*models.Tag, error) {
	tag, err := a.catalog.Tags.Get(ref)
	if errors.Is(err, shared.ErrTagNotFound) {
		return a.catalog.Tags.FindByName(ref)
	}
	return tag, err
}

// assign trims and stores v into dst when the request carried the field.
func assign(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
