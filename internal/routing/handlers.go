package routing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/course"
	"github.com/yanizio/coursehost/internal/tenant"
)

type handlers struct {
	courses CourseFinder
	health  func(ctx context.Context) error
	log     *zap.Logger
}

// classification is the JSON body of GET / and the contextualise routes.
type classification struct {
	Host           string         `json:"host"`
	NormalizedHost string         `json:"normalized_host"`
	Origin         tenant.Origin  `json:"origin"`
	Frontend       bool           `json:"frontend"`
	Backend        bool           `json:"backend"`
	External       bool           `json:"external"`
	Contextualized bool           `json:"contextualized"`
	Course         *course.Course `json:"course"`
}

func classificationOf(tc *tenant.Context) classification {
	return classification{
		Host:           tc.Host(),
		NormalizedHost: tc.NormalizeHost(),
		Origin:         tc.Origin(),
		Frontend:       tc.IsFrontend(),
		Backend:        tc.IsBackend(),
		External:       tc.IsExternal(),
		Contextualized: tc.Contextualized(),
		Course:         tc.Course(),
	}
}

func (h *handlers) classify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classificationOf(tenant.MustFromContext(r.Context())))
}

// contextualize pins {courseID} into the caller's session.  ?register=1
// also runs the course registration hook.
func (h *handlers) contextualize(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil || id == 0 {
		http.Error(w, "invalid course id", http.StatusBadRequest)
		return
	}

	crs, err := h.courses.ByID(r.Context(), id)
	switch {
	case errors.Is(err, course.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, course.ErrSchemaNotReady):
		http.Error(w, "course storage not installed", http.StatusServiceUnavailable)
		return
	case err != nil:
		h.log.Error("course load failed", zap.Uint64("course_id", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	register, _ := strconv.ParseBool(r.URL.Query().Get("register"))

	tc := tenant.MustFromContext(r.Context())
	if err := tc.Contextualize(r.Context(), crs, register); err != nil {
		h.log.Error("contextualize failed", zap.Uint64("course_id", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, classificationOf(tc))
}

func (h *handlers) decontextualize(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())
	if err := tc.Decontextualize(r.Context()); err != nil {
		h.log.Error("decontextualize failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.log.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
