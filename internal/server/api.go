package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/desertthunder/setlistx/internal/tasks"
)

// Editor is the setlist editing surface the API needs.
type Editor interface {
	Get(eventID string) (setlist.Setlist, error)
	Detail(eventID string) (formatter.Sheet, error)
	Add(eventID, songID string, opts setlist.AddOptions) (setlist.Setlist, error)
	Remove(eventID string, index int) (setlist.Setlist, error)
	Move(eventID string, index int, dir setlist.Direction) (setlist.Setlist, error)
	ToggleMedley(eventID string, index int, on bool, group int) (setlist.Setlist, error)
	SetKey(eventID string, index int, keyPlayed string) (setlist.Setlist, error)
	Groups(eventID string) ([]setlist.MedleyGroup, error)
}

// API serves the JSON endpoints.
type API struct {
	editor     Editor
	catalog    Catalog
	sharePhone string
	logger     *log.Logger
}

// NewAPI creates an API. sharePhone prefills the WhatsApp recipient and may be empty.
func NewAPI(editor Editor, catalog Catalog, sharePhone string, logger *log.Logger) *API {
	if logger == nil {
		logger = log.Default()
	}
	return &API{editor: editor, catalog: catalog, sharePhone: sharePhone, logger: logger}
}

// Register adds every API route to r.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/bands", http.HandlerFunc(a.listBands))
	r.Handle(http.MethodPut, "/bands/{id}", http.HandlerFunc(a.updateBand))
	r.Handle(http.MethodDelete, "/bands/{id}", http.HandlerFunc(a.deleteBand))
	r.Handle(http.MethodGet, "/songs", http.HandlerFunc(a.listSongs))
	r.Handle(http.MethodPut, "/songs/{id}", http.HandlerFunc(a.updateSong))
	r.Handle(http.MethodDelete, "/songs/{id}", http.HandlerFunc(a.deleteSong))
	r.Handle(http.MethodGet, "/tags", http.HandlerFunc(a.listTags))
	r.Handle(http.MethodGet, "/events", http.HandlerFunc(a.listEvents))
	r.Handle(http.MethodGet, "/events/{id}", http.HandlerFunc(a.getEvent))
	r.Handle(http.MethodPut, "/events/{id}", http.HandlerFunc(a.updateEvent))
	r.Handle(http.MethodDelete, "/events/{id}", http.HandlerFunc(a.deleteEvent))
	r.Handle(http.MethodGet, "/events/{id}/setlist", http.HandlerFunc(a.getSetlist))
	r.Handle(http.MethodPost, "/events/{id}/setlist", http.HandlerFunc(a.addEntry))
	r.Handle(http.MethodDelete, "/events/{id}/setlist/{index}", http.HandlerFunc(a.removeEntry))
	r.Handle(http.MethodPost, "/events/{id}/setlist/{index}/move", http.HandlerFunc(a.moveEntry))
	r.Handle(http.MethodPost, "/events/{id}/setlist/{index}/medley", http.HandlerFunc(a.toggleMedley))
	r.Handle(http.MethodPost, "/events/{id}/setlist/{index}/key", http.HandlerFunc(a.setKey))
	r.Handle(http.MethodGet, "/events/{id}/medleys", http.HandlerFunc(a.getMedleys))
	r.Handle(http.MethodGet, "/events/{id}/share", http.HandlerFunc(a.share))
	r.Handle(http.MethodGet, "/events/{id}/share.png", http.HandlerFunc(a.shareQR))
	r.Handle(http.MethodGet, "/events/{id}/setlist.html", http.HandlerFunc(a.setlistHTML))
}

type errorResponse struct {
	Error string `json:"error"`
}

type medleyResponse struct {
	Number  int                   `json:"number"`
	Label   string                `json:"label"`
	Entries []models.SetlistEntry `json:"entries"`
}

type setlistResponse struct {
	EventID string                `json:"event_id"`
	Entries []models.SetlistEntry `json:"entries"`
	Medleys []medleyResponse      `json:"medleys"`
}

type addRequest struct {
	SongID    string `json:"song_id"`
	KeyPlayed string `json:"key_played"`
	Medley    bool   `json:"medley"`
	Group     int    `json:"group"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type medleyRequest struct {
	On    bool `json:"on"`
	Group int  `json:"group"`
}

type keyRequest struct {
	KeyPlayed string `json:"key_played"`
}

type shareResponse struct {
	Message  string `json:"message"`
	URL      string `json:"url"`
	Redirect string `json:"redirect"`
}

func newSetlistResponse(s setlist.Setlist) setlistResponse {
	entries := s.Entries()
	if entries == nil {
		entries = []models.SetlistEntry{}
	}
	return setlistResponse{EventID: s.EventID(), Entries: entries, Medleys: newMedleyResponses(s.MedleyGroups())}
}

func newMedleyResponses(groups []setlist.MedleyGroup) []medleyResponse {
	out := make([]medleyResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, medleyResponse{Number: g.Number, Label: g.Label(), Entries: g.Entries})
	}
	return out
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := map[string]any{}
	for _, key := range []string{"band_id", "song_id", "search"} {
		if v := q.Get(key); v != "" {
			criteria[key] = v
		}
	}
	for _, key := range []string{"from", "to"} {
		if v := q.Get(key); v != "" {
			day, err := models.ParseDate(v)
			if err != nil {
				a.writeError(w, err)
				return
			}
			criteria[key] = day
		}
	}

	events, err := a.catalog.Events.List(criteria)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if when := q.Get("when"); when != "" {
		events, err = filterWhen(events, when, time.Now())
		if err != nil {
			a.writeError(w, err)
			return
		}
	}
	if events == nil {
		events = []*models.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// filterWhen keeps upcoming (after today) or past events.
func filterWhen(events []*models.Event, when string, now time.Time) ([]*models.Event, error) {
	upcoming, past := tasks.Partition(events, now)
	switch when {
	case "upcoming":
		return upcoming, nil
	case "past":
		return past, nil
	default:
		return nil, fmt.Errorf("%w: when must be upcoming or past", shared.ErrInvalidArgument)
	}
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	sheet, err := a.editor.Detail(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	data, err := formatter.ExportToJSON(sheet)
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (a *API) getSetlist(w http.ResponseWriter, r *http.Request) {
	s, err := a.editor.Get(r.PathValue("id"))
	a.respondSetlist(w, http.StatusOK, s, err)
}

func (a *API) addEntry(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.SongID) == "" {
		a.writeError(w, fmt.Errorf("%w: song_id", shared.ErrMissingArgument))
		return
	}

	s, err := a.editor.Add(r.PathValue("id"), req.SongID, setlist.AddOptions{
		KeyPlayed: req.KeyPlayed,
		Medley:    req.Medley,
		Group:     req.Group,
	})
	a.respondSetlist(w, http.StatusCreated, s, err)
}

func (a *API) removeEntry(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	s, err := a.editor.Remove(r.PathValue("id"), index)
	a.respondSetlist(w, http.StatusOK, s, err)
}

func (a *API) moveEntry(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	dir, err := setlist.ParseDirection(req.Direction)
	if err != nil {
		a.writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err))
		return
	}

	s, err := a.editor.Move(r.PathValue("id"), index, dir)
	a.respondSetlist(w, http.StatusOK, s, err)
}

func (a *API) toggleMedley(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req medleyRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	s, err := a.editor.ToggleMedley(r.PathValue("id"), index, req.On, req.Group)
	a.respondSetlist(w, http.StatusOK, s, err)
}

func (a *API) setKey(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req keyRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	s, err := a.editor.SetKey(r.PathValue("id"), index, req.KeyPlayed)
	a.respondSetlist(w, http.StatusOK, s, err)
}

func (a *API) getMedleys(w http.ResponseWriter, r *http.Request) {
	groups, err := a.editor.Groups(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMedleyResponses(groups))
}

// share returns the WhatsApp message as text, or with ?format=json the message plus its links.
func (a *API) share(w http.ResponseWriter, r *http.Request) {
	sheet, err := a.editor.Detail(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	message := formatter.ShareMessage(sheet)
	if r.URL.Query().Get("format") == "json" {
		link := formatter.ShareURL(message, a.sharePhone)
		writeJSON(w, http.StatusOK, shareResponse{Message: message, URL: link, Redirect: formatter.RedirectPath(link)})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, message)
}

func (a *API) shareQR(w http.ResponseWriter, r *http.Request) {
	sheet, err := a.editor.Detail(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			a.writeError(w, fmt.Errorf("%w: size %q is not a number", shared.ErrInvalidArgument, raw))
			return
		}
	}

	png, err := formatter.ShareQR(formatter.ShareURL(formatter.ShareMessage(sheet), a.sharePhone), size)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (a *API) setlistHTML(w http.ResponseWriter, r *http.Request) {
	sheet, err := a.editor.Detail(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	page, err := formatter.ExportToHTML(sheet)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

func (a *API) respondSetlist(w http.ResponseWriter, status int, s setlist.Setlist, err error) {
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, status, newSetlistResponse(s))
}

// writeError maps domain errors to status codes; anything unrecognized is logged and hidden behind a 500.
func (a *API) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: message})
}

// StatusFor returns the HTTP status code for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, setlist.ErrDuplicateSong), errors.Is(err, shared.ErrSongInUse),
		errors.Is(err, shared.ErrBandInUse), errors.Is(err, shared.ErrTagExists):
		return http.StatusConflict
	case errors.Is(err, setlist.ErrInvalidGroup):
		return http.StatusUnprocessableEntity
	case errors.Is(err, setlist.ErrIndexOutOfRange),
		errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrEventNotFound),
		errors.Is(err, shared.ErrSongNotFound),
		errors.Is(err, shared.ErrBandNotFound),
		errors.Is(err, shared.ErrTagNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidRedirect):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q is not a number", shared.ErrInvalidArgument, raw)
	}
	return index, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
