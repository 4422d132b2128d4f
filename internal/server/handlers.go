package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listenx/internal/formatter"
	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/services"
	"github.com/desertthunder/listenx/internal/shared"
	"github.com/desertthunder/listenx/internal/tasks"
)

// Catalog is the part of [tasks.Aggregator] served over HTTP.
type Catalog interface {
	GetPlaylists(ctx context.Context, name string, params models.ListParams, progress chan<- tasks.ProgressUpdate) (*models.PagedResult[models.Playlist], error)
	GetPlaylistWithTracks(ctx context.Context, name, nativeID string, progress chan<- tasks.ProgressUpdate) (*models.Playlist, error)
	Lyric(ctx context.Context, name, nativeTrackID string) (*services.Lyric, error)
}

var contentTypes = map[formatter.Format]string{
	formatter.JSON:     "application/json; charset=utf-8",
	formatter.CSV:      "text/csv; charset=utf-8",
	formatter.Markdown: "text/markdown; charset=utf-8",
	formatter.Text:     "text/plain; charset=utf-8",
}

// CatalogHandler serves listings, playlists and lyrics from a [Catalog].
type CatalogHandler struct {
	catalog Catalog
	mux     *http.ServeMux
	logger  *log.Logger
}

// NewCatalogHandler creates a CatalogHandler. A nil logger discards output.
func NewCatalogHandler(c Catalog, logger *log.Logger) *CatalogHandler {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	h := &CatalogHandler{catalog: c, mux: http.NewServeMux(), logger: logger}
	h.mux.HandleFunc("GET /healthz", h.health)
	h.mux.HandleFunc("GET /providers", h.providers)
	h.mux.HandleFunc("GET /playlists", h.listPlaylists)
	h.mux.HandleFunc("GET /playlists/{provider}/{id}", h.getPlaylist)
	h.mux.HandleFunc("GET /lyrics/{provider}/{id}", h.getLyric)
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *CatalogHandler) Routes() []string {
	return []string{
		"GET /healthz",
		"GET /providers",
		"GET /playlists",
		"GET /playlists/{provider}/{id}",
		"GET /lyrics/{provider}/{id}",
	}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *CatalogHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CatalogHandler) providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Providers())
}

// listPlaylists handles GET /playlists?provider=P&filter=F&offset=N.
func (h *CatalogHandler) listPlaylists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset := 0
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, shared.ErrInvalidArgument, http.StatusBadRequest)
			return
		}
		offset = n
	}

	page, err := h.catalog.GetPlaylists(r.Context(), q.Get("provider"), models.ListParams{
		FilterID: q.Get("filter"),
		Offset:   offset,
	}, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// getPlaylist handles GET /playlists/{provider}/{id}?format=F.
func (h *CatalogHandler) getPlaylist(w http.ResponseWriter, r *http.Request) {
	f, err := formatter.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	pl, err := h.catalog.GetPlaylistWithTracks(r.Context(), r.PathValue("provider"), r.PathValue("id"), nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if f == formatter.JSON {
		writeJSON(w, http.StatusOK, pl)
		return
	}

	data, err := formatter.Render(pl, f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[f])
	w.Write(data)
}

// getLyric handles GET /lyrics/{provider}/{id}.
func (h *CatalogHandler) getLyric(w http.ResponseWriter, r *http.Request) {
	lyric, err := h.catalog.Lyric(r.Context(), r.PathValue("provider"), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lyric)
}

func (h *CatalogHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "kind", shared.ErrorKind(err), "err", err, "request_id", RequestIDFrom(r.Context()))
	}
	writeError(w, err, status)
}

// statusFor maps aggregator errors onto HTTP statuses. Upstream failures are reported as 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlaylistNotFound), errors.Is(err, shared.ErrTrackNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case shared.ErrorKind(err) != "other":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, err error, status int) {
	body := errorBody{Error: err.Error()}
	if kind := shared.ErrorKind(err); kind != "other" {
		body.Kind = kind
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypes[formatter.JSON])
	w.WriteHeader(status)
	w.Write(data)
}

// NewCatalogRouter puts request ids, panic recovery and access logging in front of a [CatalogHandler].
func NewCatalogRouter(c Catalog, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	r := NewBasicRouter()
	r.Use(RequestID(), Recover(logger), Logging(logger))
	r.Handler(NewCatalogHandler(c, logger))
	return r
}
