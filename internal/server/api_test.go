package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/repositories"
	"github.com/desertthunder/setlistx/internal/services"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/desertthunder/setlistx/internal/shared"
	tu "github.com/desertthunder/setlistx/internal/testing"
)

type apiFixture struct {
	router *BasicRouter
	stores services.Stores
	tags   *repositories.TagRepository
	band   *models.Band
	event  *models.Event
	songs  []*models.Song
}

func urlEscape(s string) string { return url.QueryEscape(s) }

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()

	db := tu.MustOpenDB(t)
	stores := services.SQLiteStores(db)
	logger := shared.NewLogger(&bytes.Buffer{})

	band := models.NewBand("Worship Team", "")
	if err := stores.Bands.Create(band); err != nil {
		t.Fatalf("failed to create band: %v", err)
	}
	event := tu.Event(t, band.ID(), "Sunday Morning", "2025-03-02")
	if err := stores.Events.Create(event); err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	var songs []*models.Song
	for _, name := range []string{"Amazing Grace", "Oceans", "Holy Spirit"} {
		song := models.NewSong(name, "G")
		if err := stores.Songs.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		songs = append(songs, song)
	}

	tags := repositories.NewTagRepository(db)
	catalog := Catalog{Bands: stores.Bands, Songs: stores.Songs, Events: stores.Events, Tags: tags}
	api := NewAPI(services.NewSetlistService(stores, logger), catalog, "", logger)
	return &apiFixture{router: NewRouter(api, 0, 0), stores: stores, tags: tags, band: band, event: event, songs: songs}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func (f *apiFixture) setlistPath(suffix string) string {
	return "/events/" + f.event.ID() + "/setlist" + suffix
}

func (f *apiFixture) add(t *testing.T, i int, req addRequest) setlistResponse {
	t.Helper()
	req.SongID = f.songs[i].ID()
	rec := f.do(t, http.MethodPost, f.setlistPath(""), req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add %s = %d: %s", f.songs[i].Name, rec.Code, rec.Body.String())
	}
	return decode[setlistResponse](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func entryNames(resp setlistResponse) string {
	var names []string
	for _, e := range resp.Entries {
		names = append(names, fmt.Sprintf("%d:%s", e.Order, e.Song.Name))
	}
	return strings.Join(names, ",")
}

func TestAPISetlist(t *testing.T) {
	t.Run("empty setlist", func(t *testing.T) {
		f := setupAPI(t)
		rec := f.do(t, http.MethodGet, f.setlistPath(""), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		resp := decode[setlistResponse](t, rec)
		if resp.EventID != f.event.ID() || len(resp.Entries) != 0 || len(resp.Medleys) != 0 {
			t.Errorf("unexpected response %+v", resp)
		}
		if !strings.Contains(rec.Body.String(), `"entries":[]`) {
			t.Errorf("entries should encode as an empty array: %s", rec.Body.String())
		}
	})

	t.Run("add, move and remove", func(t *testing.T) {
		f := setupAPI(t)
		f.add(t, 0, addRequest{})
		f.add(t, 1, addRequest{KeyPlayed: "A"})
		resp := f.add(t, 2, addRequest{})
		if got := entryNames(resp); got != "1:Amazing Grace,2:Oceans,3:Holy Spirit" {
			t.Fatalf("entries = %s", got)
		}

		rec := f.do(t, http.MethodPost, f.setlistPath("/2/move"), moveRequest{Direction: "up"})
		if rec.Code != http.StatusOK {
			t.Fatalf("move = %d: %s", rec.Code, rec.Body.String())
		}
		if got := entryNames(decode[setlistResponse](t, rec)); got != "1:Amazing Grace,2:Holy Spirit,3:Oceans" {
			t.Errorf("after move = %s", got)
		}

		rec = f.do(t, http.MethodDelete, f.setlistPath("/0"), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("remove = %d: %s", rec.Code, rec.Body.String())
		}
		if got := entryNames(decode[setlistResponse](t, rec)); got != "1:Holy Spirit,2:Oceans" {
			t.Errorf("after remove = %s", got)
		}

		rec = f.do(t, http.MethodGet, f.setlistPath(""), nil)
		if got := entryNames(decode[setlistResponse](t, rec)); got != "1:Holy Spirit,2:Oceans" {
			t.Errorf("reloaded = %s", got)
		}
	})

	t.Run("medleys", func(t *testing.T) {
		f := setupAPI(t)
		f.add(t, 0, addRequest{Medley: true})
		f.add(t, 1, addRequest{Medley: true, Group: 1})
		f.add(t, 2, addRequest{})

		rec := f.do(t, http.MethodGet, "/events/"+f.event.ID()+"/medleys", nil)
		medleys := decode[[]medleyResponse](t, rec)
		if len(medleys) != 1 || medleys[0].Number != 1 || medleys[0].Label != "Amazing Grace + Oceans" {
			t.Fatalf("medleys = %+v", medleys)
		}

		rec = f.do(t, http.MethodPost, f.setlistPath("/2/medley"), medleyRequest{On: true})
		resp := decode[setlistResponse](t, rec)
		if len(resp.Medleys) != 2 || resp.Entries[2].MedleyGroup != 2 {
			t.Errorf("toggle on with new group: %+v", resp)
		}

		rec = f.do(t, http.MethodPost, f.setlistPath("/0/medley"), medleyRequest{On: false})
		resp = decode[setlistResponse](t, rec)
		if resp.Entries[0].IsMedley || resp.Entries[0].MedleyGroup != 0 {
			t.Errorf("toggle off left %+v", resp.Entries[0])
		}
	})

	t.Run("set key", func(t *testing.T) {
		f := setupAPI(t)
		f.add(t, 0, addRequest{})

		rec := f.do(t, http.MethodPost, f.setlistPath("/0/key"), keyRequest{KeyPlayed: "Bb"})
		resp := decode[setlistResponse](t, rec)
		if rec.Code != http.StatusOK || resp.Entries[0].KeyPlayed != "Bb" {
			t.Errorf("set key = %d %+v", rec.Code, resp)
		}
	})

	t.Run("error statuses", func(t *testing.T) {
		f := setupAPI(t)
		f.add(t, 0, addRequest{})

		tests := []struct {
			name   string
			method string
			path   string
			body   any
			status int
		}{
			{"duplicate song", http.MethodPost, f.setlistPath(""), addRequest{SongID: f.songs[0].ID()}, http.StatusConflict},
			{"unknown group", http.MethodPost, f.setlistPath(""), addRequest{SongID: f.songs[1].ID(), Medley: true, Group: 7}, http.StatusUnprocessableEntity},
			{"unknown song", http.MethodPost, f.setlistPath(""), addRequest{SongID: "missing"}, http.StatusNotFound},
			{"missing song id", http.MethodPost, f.setlistPath(""), addRequest{}, http.StatusBadRequest},
			{"bad json", http.MethodPost, f.setlistPath(""), "not an object", http.StatusBadRequest},
			{"unknown event", http.MethodGet, "/events/missing/setlist", nil, http.StatusNotFound},
			{"index out of range", http.MethodDelete, f.setlistPath("/5"), nil, http.StatusNotFound},
			{"negative index", http.MethodPost, f.setlistPath("/-1/move"), moveRequest{Direction: "down"}, http.StatusNotFound},
			{"non-numeric index", http.MethodDelete, f.setlistPath("/first"), nil, http.StatusBadRequest},
			{"bad direction", http.MethodPost, f.setlistPath("/0/move"), moveRequest{Direction: "sideways"}, http.StatusBadRequest},
			{"toggle unknown group", http.MethodPost, f.setlistPath("/0/medley"), medleyRequest{On: true, Group: 3}, http.StatusUnprocessableEntity},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := f.do(t, tt.method, tt.path, tt.body)
				if rec.Code != tt.status {
					t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
				}
				if body := decode[errorResponse](t, rec); body.Error == "" {
					t.Error("expected error message in body")
				}
			})
		}
	})

	t.Run("edge move is a no-op", func(t *testing.T) {
		f := setupAPI(t)
		f.add(t, 0, addRequest{})
		f.add(t, 1, addRequest{})

		rec := f.do(t, http.MethodPost, f.setlistPath("/0/move"), moveRequest{Direction: "up"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := entryNames(decode[setlistResponse](t, rec)); got != "1:Amazing Grace,2:Oceans" {
			t.Errorf("entries = %s", got)
		}
	})
}

func TestAPICatalog(t *testing.T) {
	f := setupAPI(t)
	f.add(t, 1, addRequest{})

	other := tu.Event(t, f.band.ID(), "Midweek", "2025-03-05")
	if err := f.stores.Events.Create(other); err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	t.Run("songs", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/songs?name=OCEAN", nil)
		var songs []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &songs); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(songs) != 1 || songs[0]["name"] != "Oceans" {
			t.Errorf("songs = %v", songs)
		}
	})

	t.Run("events", func(t *testing.T) {
		tests := []struct {
			query string
			want  int
		}{
			{"", 2},
			{"?band_id=" + f.band.ID(), 2},
			{"?from=2025-03-03", 1},
			{"?to=2025-03-02", 1},
			{"?song_id=" + f.songs[1].ID(), 1},
			{"?search=midweek", 1},
		}
		for _, tt := range tests {
			rec := f.do(t, http.MethodGet, "/events"+tt.query, nil)
			var events []map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
				t.Fatalf("decode %s: %v", tt.query, err)
			}
			if len(events) != tt.want {
				t.Errorf("GET /events%s = %d events, want %d", tt.query, len(events), tt.want)
			}
		}
	})

	t.Run("events with bad date", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/events?from=yesterday", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("events with bad when", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/events?when=soon", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("event detail", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/events/"+f.event.ID(), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		for _, want := range []string{"Sunday Morning", "Worship Team", "Oceans"} {
			if !strings.Contains(rec.Body.String(), want) {
				t.Errorf("detail missing %q: %s", want, rec.Body.String())
			}
		}
	})
}

func TestAPICatalogEdits(t *testing.T) {
	t.Run("bands", func(t *testing.T) {
		f := setupAPI(t)

		rec := f.do(t, http.MethodGet, "/bands", nil)
		if bands := decode[[]map[string]any](t, rec); len(bands) != 1 || bands[0]["name"] != "Worship Team" {
			t.Fatalf("bands = %v", bands)
		}

		rec = f.do(t, http.MethodPut, "/bands/"+f.band.ID(), map[string]any{"description": "Sunday team"})
		if rec.Code != http.StatusOK {
			t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
		}
		band := decode[map[string]any](t, rec)
		if band["name"] != "Worship Team" || band["description"] != "Sunday team" {
			t.Errorf("omitted fields should be kept: %v", band)
		}

		if rec := f.do(t, http.MethodPut, "/bands/"+f.band.ID(), map[string]any{"name": " "}); rec.Code != http.StatusBadRequest {
			t.Errorf("blank name = %d, want 400", rec.Code)
		}
		if rec := f.do(t, http.MethodPut, "/bands/"+f.band.ID(), map[string]any{"colour": "red"}); rec.Code != http.StatusBadRequest {
			t.Errorf("unknown field = %d, want 400", rec.Code)
		}
		if rec := f.do(t, http.MethodPut, "/bands/missing", map[string]any{"name": "x"}); rec.Code != http.StatusNotFound {
			t.Errorf("missing band = %d, want 404", rec.Code)
		}

		if rec := f.do(t, http.MethodDelete, "/bands/"+f.band.ID(), nil); rec.Code != http.StatusConflict {
			t.Errorf("delete band with events = %d, want 409", rec.Code)
		}
		if rec := f.do(t, http.MethodDelete, "/events/"+f.event.ID(), nil); rec.Code != http.StatusNoContent {
			t.Fatalf("delete event = %d: %s", rec.Code, rec.Body.String())
		}
		if rec := f.do(t, http.MethodDelete, "/bands/"+f.band.ID(), nil); rec.Code != http.StatusNoContent {
			t.Errorf("delete band = %d, want 204", rec.Code)
		}
		if rec := f.do(t, http.MethodDelete, "/bands/"+f.band.ID(), nil); rec.Code != http.StatusNotFound {
			t.Errorf("second delete = %d, want 404", rec.Code)
		}
	})

	t.Run("songs", func(t *testing.T) {
		f := setupAPI(t)
		f.add(t, 0, addRequest{})
		oceans := f.songs[1]

		rec := f.do(t, http.MethodPut, "/songs/"+oceans.ID(), map[string]any{"original_key": "D", "author": "Hillsong United"})
		if rec.Code != http.StatusOK {
			t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
		}
		song := decode[map[string]any](t, rec)
		if song["name"] != "Oceans" || song["original_key"] != "D" || song["author"] != "Hillsong United" {
			t.Errorf("song = %v", song)
		}

		if rec := f.do(t, http.MethodDelete, "/songs/"+f.songs[0].ID(), nil); rec.Code != http.StatusConflict {
			t.Errorf("delete song in a setlist = %d, want 409", rec.Code)
		}
		if rec := f.do(t, http.MethodDelete, "/songs/"+oceans.ID(), nil); rec.Code != http.StatusNoContent {
			t.Errorf("delete unused song = %d, want 204", rec.Code)
		}
		if rec := f.do(t, http.MethodPut, "/songs/"+oceans.ID(), map[string]any{"name": "x"}); rec.Code != http.StatusNotFound {
			t.Errorf("update deleted song = %d, want 404", rec.Code)
		}
	})

	t.Run("events", func(t *testing.T) {
		f := setupAPI(t)
		youth := models.NewBand("Youth Band", "")
		if err := f.stores.Bands.Create(youth); err != nil {
			t.Fatalf("failed to create band: %v", err)
		}
		path := "/events/" + f.event.ID()

		rec := f.do(t, http.MethodPut, path, map[string]any{
			"date": "2025-03-09", "kind": "special", "leader": "Ana", "band_id": youth.ID(),
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
		}
		event := decode[map[string]any](t, rec)
		if event["date"] != "2025-03-09" || event["kind"] != "special" || event["leader"] != "Ana" ||
			event["band_id"] != youth.ID() || event["name"] != "Sunday Morning" {
			t.Errorf("event = %v", event)
		}

		tests := []struct {
			name string
			body map[string]any
			want int
		}{
			{"bad date", map[string]any{"date": "09/03/2025"}, http.StatusBadRequest},
			{"bad kind", map[string]any{"kind": "party"}, http.StatusBadRequest},
			{"unknown band", map[string]any{"band_id": "missing"}, http.StatusNotFound},
			{"blank name", map[string]any{"name": ""}, http.StatusBadRequest},
		}
		for _, tt := range tests {
			if rec := f.do(t, http.MethodPut, path, tt.body); rec.Code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, rec.Code, tt.want)
			}
		}

		if rec := f.do(t, http.MethodDelete, path, nil); rec.Code != http.StatusNoContent {
			t.Fatalf("delete = %d", rec.Code)
		}
		if rec := f.do(t, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Errorf("deleted event = %d, want 404", rec.Code)
		}
	})

	t.Run("tags and song filters", func(t *testing.T) {
		f := setupAPI(t)
		christmas := models.NewTag("Christmas", "#ef4444")
		if err := f.tags.Create(christmas); err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}
		if err := f.tags.Attach(f.songs[0].ID(), christmas.ID()); err != nil {
			t.Fatalf("failed to attach tag: %v", err)
		}
		oceans := f.songs[1]
		oceans.OriginalKey = "D"
		if err := f.stores.Songs.Update(oceans); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		rec := f.do(t, http.MethodGet, "/tags", nil)
		tags := decode[[]struct {
			Tag   map[string]any `json:"tag"`
			Songs int            `json:"songs"`
		}](t, rec)
		if len(tags) != 1 || tags[0].Tag["name"] != "Christmas" || tags[0].Tag["color"] != "#ef4444" || tags[0].Songs != 1 {
			t.Errorf("tags = %+v", tags)
		}

		names := func(query string) string {
			t.Helper()
			rec := f.do(t, http.MethodGet, "/songs"+query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("GET /songs%s = %d: %s", query, rec.Code, rec.Body.String())
			}
			var out []string
			for _, s := range decode[[]map[string]any](t, rec) {
				out = append(out, s["name"].(string))
			}
			return strings.Join(out, ",")
		}
		if got := names("?tag=christmas"); got != "Amazing Grace" {
			t.Errorf("?tag = %s", got)
		}
		if got := names("?key=d"); got != "Oceans" {
			t.Errorf("?key = %s", got)
		}
		if got := names("?sort=key"); got != "Oceans,Amazing Grace,Holy Spirit" {
			t.Errorf("?sort=key = %s", got)
		}

		if rec := f.do(t, http.MethodGet, "/songs?sort=loudest", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("bad sort = %d, want 400", rec.Code)
		}
		if rec := f.do(t, http.MethodGet, "/songs?tag=nope", nil); rec.Code != http.StatusNotFound {
			t.Errorf("unknown tag = %d, want 404", rec.Code)
		}
	})
}

func TestAPIShare(t *testing.T) {
	f := setupAPI(t)
	f.add(t, 0, addRequest{KeyPlayed: "A"})
	base := "/events/" + f.event.ID()

	t.Run("text", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, base+"/share", nil)
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Errorf("Content-Type = %q", ct)
		}
		if body := rec.Body.String(); !strings.Contains(body, "*Sunday Morning*") || !strings.Contains(body, "1. Amazing Grace (A)") {
			t.Errorf("share text = %q", body)
		}
	})

	t.Run("json", func(t *testing.T) {
		resp := decode[shareResponse](t, f.do(t, http.MethodGet, base+"/share?format=json", nil))
		if !strings.HasPrefix(resp.URL, "https://wa.me/?text=") {
			t.Errorf("url = %q", resp.URL)
		}
		if !strings.HasPrefix(resp.Redirect, "/redirect?to=") {
			t.Errorf("redirect = %q", resp.Redirect)
		}

		rec := f.do(t, http.MethodGet, resp.Redirect, nil)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != resp.URL {
			t.Errorf("following redirect = %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("qr", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, base+"/share.png?size=128", nil)
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
			t.Fatalf("qr = %d %q", rec.Code, rec.Header().Get("Content-Type"))
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
			t.Error("body is not a PNG")
		}
	})

	t.Run("qr size is bounded", func(t *testing.T) {
		for _, query := range []string{"?size=100000", "?size=1025", "?size=big"} {
			rec := f.do(t, http.MethodGet, base+"/share.png"+query, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("share.png%s = %d, want 400", query, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("share.png%s Content-Type = %q", query, ct)
			}
		}
	})

	t.Run("html", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, base+"/setlist.html", nil)
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q", ct)
		}
		if !strings.Contains(rec.Body.String(), "<h1>Sunday Morning</h1>") {
			t.Errorf("html = %s", rec.Body.String())
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		for _, path := range []string{"/events/missing/share", "/events/missing/share.png", "/events/missing/setlist.html"} {
			if rec := f.do(t, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
				t.Errorf("GET %s = %d, want 404", path, rec.Code)
			}
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", setlist.ErrDuplicateSong), http.StatusConflict},
		{shared.ErrSongInUse, http.StatusConflict},
		{shared.ErrBandInUse, http.StatusConflict},
		{shared.ErrTagExists, http.StatusConflict},
		{shared.ErrTagNotFound, http.StatusNotFound},
		{setlist.ErrInvalidGroup, http.StatusUnprocessableEntity},
		{setlist.ErrIndexOutOfRange, http.StatusNotFound},
		{shared.ErrEventNotFound, http.StatusNotFound},
		{shared.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
