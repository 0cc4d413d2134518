package server

import (
	"net/http"

	"github.com/desertthunder/setlistx/internal/formatter"
)

// RedirectHandler forwards share links to WhatsApp. Any other destination is refused with 400.
type RedirectHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *RedirectHandler) Routes() []string {
	return []string{"GET /redirect"}
}

func (h *RedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target, err := formatter.ValidateRedirect(r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// NewRouter builds the full router: middleware, API routes and the share redirect.
func NewRouter(api *API, rps float64, burst int) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Recover(api.logger), Logging(api.logger), RateLimit(rps, burst))
	api.Register(r)
	r.Handler(&RedirectHandler{})
	return r
}
