package console

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/platform/httpx"
)

// MountAPI registers the JSON navigation endpoints used by client-side shells.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/resolve", h.apiResolve)
	r.Get("/menu", h.apiMenu)
}

type decisionResponse struct {
	Path      string            `json:"path"`
	Kind      string            `json:"kind"`
	State     string            `json:"state"`
	Pattern   string            `json:"pattern,omitempty"`
	Component string            `json:"component,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Layouts   []string          `json:"layouts,omitempty"`
	Target    string            `json:"target,omitempty"`
	Class     string            `json:"class,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Replace   bool              `json:"replace,omitempty"`
}

type menuResponse struct {
	Role     string                   `json:"role"`
	Sections []navigation.MenuSection `json:"sections"`
}

func (h *Handler) apiResolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("path")
	if raw == "" {
		httpx.RespondError(w, fmt.Errorf("%w: query parameter path is required", httpx.ErrValidation))
		return
	}
	// Shells may send a full location; only its path is routed.
	target, err := url.Parse(raw)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: path is not a valid URL", httpx.ErrValidation))
		return
	}
	p := target.Path
	outcome, sess, err := h.navigate(r.Context(), p)
	if err != nil {
		h.logger.Error("resolve console session", slog.String("path", p), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	d := outcome.Decision
	h.record(r, sess, d)

	w.Header().Set("Cache-Control", "no-store")
	resp := decisionResponse{Path: d.Path, Kind: d.Kind.String(), State: outcome.State.String()}
	status := http.StatusOK
	switch d.Kind {
	case navigation.KindAllow:
		comp, err := h.composer.Compose(d, sess.Role)
		if err != nil {
			h.logger.Error("compose console page", slog.String("path", d.Path), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Composition Failed", "")
			return
		}
		resp.Pattern = comp.Pattern
		resp.Component = string(comp.Page().Component)
		resp.Params = comp.Params
		for _, l := range comp.Layouts() {
			resp.Layouts = append(resp.Layouts, string(l.Component))
		}
	case navigation.KindRedirect:
		resp.Pattern = d.Match.Pattern
		resp.Target = d.Redirect.Target
		resp.Class = d.Redirect.Class.String()
		resp.Reason = d.Redirect.Reason.String()
		resp.Replace = d.Redirect.Replace
	case navigation.KindNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusAccepted
		w.Header().Set("Retry-After", strconv.Itoa(int(h.retryAfter.Seconds()+0.5)))
	}
	httpx.JSON(w, status, resp)
}

func (h *Handler) apiMenu(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Resolve(r.Context())
	if err != nil {
		h.logger.Error("resolve console session", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	switch {
	case sess.Loading:
		w.Header().Set("Retry-After", strconv.Itoa(int(h.retryAfter.Seconds()+0.5)))
		httpx.JSON(w, http.StatusAccepted, menuResponse{Sections: []navigation.MenuSection{}})
	case !sess.Authenticated():
		httpx.RespondError(w, fmt.Errorf("%w: sign in to load the menu", httpx.ErrUnauthorized))
	default:
		sections := navigation.BuildMenu(h.evaluator, sess.Role)
		if sections == nil {
			sections = []navigation.MenuSection{}
		}
		httpx.JSON(w, http.StatusOK, menuResponse{Role: string(sess.Role), Sections: sections})
	}
}
