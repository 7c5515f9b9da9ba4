package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"progress/internal/render"
	"progress/internal/service"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Handler struct {
	svc    ServiceInterface
	r      *chi.Mux
	title  string
	now    func() time.Time
	logger *slog.Logger
}

func NewHandler(s ServiceInterface, title string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{svc: s, r: chi.NewRouter(), title: title, now: time.Now, logger: logger}
	h.routes()
	return h
}

func (h *Handler) Router() http.Handler { return h.r }

func (h *Handler) routes() {
	h.r.Use(middleware.RequestID)
	h.r.Use(middleware.Recoverer)

	h.r.Get("/", h.page)
	h.r.Get("/progress", h.page)
	h.r.Get("/api/progress", h.progressJSON)
	h.r.Get("/stats", h.stats)
	h.r.Get("/stats/fetches", h.recentFetches)
	h.r.Get("/healthz", h.healthz)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}, code int) {
	data, err := sonic.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
		h.writeError(w, "INTERNAL_ERROR", "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func (h *Handler) writeError(w http.ResponseWriter, code, message string, statusCode int) {
	errorResp := ErrorResponse{}
	errorResp.Error.Code = code
	errorResp.Error.Message = message
	data, _ := sonic.Marshal(errorResp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

// page renders the HTML timeline. A failed fetch still answers 200 with the
// error message in place of the timeline.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	p := h.svc.LoadPage(r.Context())

	var buf bytes.Buffer
	if err := render.HTML(&buf, h.title, p, h.now()); err != nil {
		h.logger.Error("failed to render progress page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.logger.Debug("rendered progress page", "items", len(p.Items), "error", p.Error)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) progressJSON(w http.ResponseWriter, r *http.Request) {
	p := h.svc.LoadPage(r.Context())
	h.writeJSON(w, p, http.StatusOK)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.FetchStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		h.writeError(w, "INTERNAL_ERROR", "failed to get statistics", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, st, http.StatusOK)
}

func (h *Handler) recentFetches(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, "BAD_REQUEST", "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := h.svc.RecentFetches(r.Context(), limit)
	if err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			h.writeError(w, "BAD_REQUEST", err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to list recent fetches", "error", err)
		h.writeError(w, "INTERNAL_ERROR", "failed to list fetches", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, recs, http.StatusOK)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
