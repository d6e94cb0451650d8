package console

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/observability"
	"github.com/gymops/gymops/internal/platform/httpx"
	"github.com/gymops/gymops/internal/shared"
	"github.com/gymops/gymops/internal/view"
	"github.com/gymops/gymops/jobs"
)

// SessionProvider resolves the console session for a request. A provider that
// cannot answer in time returns a loading session instead of blocking.
type SessionProvider interface {
	Resolve(ctx context.Context) (navigation.Session, error)
}

// AuditSink receives denied and unknown navigations.
type AuditSink interface {
	PublishNavigationAudit(ctx context.Context, payload jobs.NavigationAuditPayload) error
}

// HandlerConfig collects the console dependencies.
type HandlerConfig struct {
	Logger    *slog.Logger
	Evaluator *navigation.Evaluator
	Registry  *Registry
	Templates *view.Engine
	Sessions  SessionProvider
	CSRF      *shared.CSRFManager
	Metrics   *observability.Metrics
	Audit     AuditSink
	// RetryAfter is how long a pending page waits before reloading.
	RetryAfter time.Duration
}

// Handler serves every console path through the navigation machine.
type Handler struct {
	logger     *slog.Logger
	evaluator  *navigation.Evaluator
	registry   *Registry
	composer   *navigation.Composer
	templates  *view.Engine
	sessions   SessionProvider
	csrf       *shared.CSRFManager
	metrics    *observability.Metrics
	audit      AuditSink
	retryAfter time.Duration
}

// NewHandler constructs a console Handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Evaluator == nil || cfg.Registry == nil || cfg.Sessions == nil {
		return nil, errors.New("console: evaluator, registry and session provider are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retry := cfg.RetryAfter
	if retry <= 0 {
		retry = time.Second
	}
	return &Handler{
		logger:     logger,
		evaluator:  cfg.Evaluator,
		registry:   cfg.Registry,
		composer:   navigation.NewComposer(cfg.Registry),
		templates:  cfg.Templates,
		sessions:   cfg.Sessions,
		csrf:       cfg.CSRF,
		metrics:    cfg.Metrics,
		audit:      cfg.Audit,
		retryAfter: retry,
	}, nil
}

// MountRoutes registers the console catch-all. It must be mounted after every
// other route so it only sees console paths.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.serve)
	r.Get("/*", h.serve)
}

// navigate runs one request through a fresh machine: the path is held until
// the provider answers, then evaluated against the resolved session.
func (h *Handler) navigate(ctx context.Context, p string) (navigation.Outcome, navigation.Session, error) {
	m := navigation.NewMachine(h.evaluator)
	m.Navigate(p)
	sess, err := h.sessions.Resolve(ctx)
	if err != nil {
		return navigation.Outcome{}, navigation.Session{}, err
	}
	return m.SetSession(sess), sess, nil
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	outcome, sess, err := h.navigate(r.Context(), r.URL.Path)
	if err != nil {
		h.logger.Error("resolve console session", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.metrics.ObserveDecision("error", "")
		h.renderStatus(w, r, http.StatusInternalServerError, "pages/error.html", "Error")
		return
	}
	d := outcome.Decision
	h.record(r, sess, d)

	switch outcome.State {
	case navigation.StateRendering:
		h.renderPage(w, r, sess, d)
	case navigation.StateRedirecting:
		h.redirect(w, r, d.Redirect)
	case navigation.StateNotFound:
		h.renderStatus(w, r, http.StatusNotFound, "pages/not_found.html", "Not found")
	default:
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Refresh", strconv.Itoa(int(h.retryAfter.Seconds()+0.5)))
		h.renderStatus(w, r, http.StatusAccepted, "pages/loading.html", "Loading")
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, sess navigation.Session, d navigation.Decision) {
	comp, err := h.composer.Compose(d, sess.Role)
	if err != nil {
		h.logger.Error("compose console page", slog.String("path", d.Path), slog.Any("error", err))
		h.metrics.ObserveDecision("error", "")
		h.renderStatus(w, r, http.StatusInternalServerError, "pages/error.html", "Error")
		return
	}
	frames := make([]view.Frame, 0, len(comp.Layers))
	for _, layer := range comp.Layers {
		c, ok := h.registry.Lookup(layer.Component)
		if !ok {
			h.logger.Error("unregistered component", slog.String("component", string(layer.Component)))
			h.metrics.ObserveDecision("error", "")
			h.renderStatus(w, r, http.StatusInternalServerError, "pages/error.html", "Error")
			return
		}
		frames = append(frames, view.Frame{
			Template:  c.Template,
			Component: string(c.Name),
			Title:     c.Title,
			Props:     layer.Props,
		})
	}

	data := h.templateData(r, sess)
	data.Title = frames[len(frames)-1].Title
	data.Data = comp
	if err := h.templates.RenderFrames(w, frames, data); err != nil {
		h.logger.Error("render console page", slog.String("path", d.Path), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type redirectBody struct {
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Class   string `json:"class"`
	Replace bool   `json:"replace"`
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, rd navigation.Redirect) {
	w.Header().Set("Cache-Control", "no-store")
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, redirectBody{
			Kind:    navigation.KindRedirect.String(),
			Target:  rd.Target,
			Class:   rd.Class.String(),
			Replace: rd.Replace,
		})
		return
	}
	if rd.Reason == navigation.ReasonUnauthenticated && r.Method == http.MethodGet {
		if cookieSess := shared.SessionFromContext(r.Context()); cookieSess != nil {
			cookieSess.SetReturnTo(navigation.CleanPath(r.URL.Path))
		}
	}
	http.Redirect(w, r, rd.Target, http.StatusSeeOther)
}

func (h *Handler) renderStatus(w http.ResponseWriter, r *http.Request, status int, name, title string) {
	data := h.templateData(r, navigation.Session{})
	data.Title = title
	if err := h.templates.RenderStatus(w, status, name, data); err != nil {
		h.logger.Error("render console status page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(status), status)
	}
}

func (h *Handler) templateData(r *http.Request, sess navigation.Session) view.TemplateData {
	data := view.TemplateData{CurrentPath: navigation.CleanPath(r.URL.Path)}
	if sess.Authenticated() {
		data.Role = string(sess.Role)
		data.RoleLabel = sess.Role.Label()
		data.Menu = navigation.BuildMenu(h.evaluator, sess.Role)
	}
	if s := shared.SessionFromContext(r.Context()); s != nil {
		data.Flash = s.PopFlash()
		if h.csrf != nil {
			if token, err := h.csrf.EnsureToken(s); err == nil {
				data.CSRFToken = token
			}
		}
	}
	return data
}

// record logs the decision, counts it and hands denied or unknown paths to
// the audit sink.
func (h *Handler) record(r *http.Request, sess navigation.Session, d navigation.Decision) {
	class := ""
	if d.Kind == navigation.KindRedirect {
		class = d.Redirect.Class.String()
	}
	h.metrics.ObserveDecision(d.Kind.String(), class)

	attrs := []any{
		slog.String("path", d.Path),
		slog.String("decision", d.Kind.String()),
		slog.String("role", string(sess.Role)),
	}
	if d.Match.Pattern != "" {
		attrs = append(attrs, slog.String("pattern", d.Match.Pattern))
	}
	if d.Kind == navigation.KindRedirect {
		attrs = append(attrs,
			slog.String("target", d.Redirect.Target),
			slog.String("class", class),
			slog.String("reason", d.Redirect.Reason.String()),
		)
	}
	h.logger.Debug("console navigation", attrs...)

	if h.audit == nil || (d.Kind != navigation.KindRedirect && d.Kind != navigation.KindNotFound) {
		return
	}
	payload := jobs.NavigationAuditPayload{
		ID:         uuid.NewString(),
		Role:       string(sess.Role),
		Path:       d.Path,
		Pattern:    d.Match.Pattern,
		Outcome:    d.Kind.String(),
		Target:     d.Target(),
		Class:      class,
		RequestID:  middleware.GetReqID(r.Context()),
		OccurredAt: time.Now().UTC(),
	}
	if d.Kind == navigation.KindRedirect {
		payload.Reason = d.Redirect.Reason.String()
	}
	if s := shared.SessionFromContext(r.Context()); s != nil {
		if id, ok := s.UserID(); ok {
			payload.UserID = id
		}
	}
	if err := h.audit.PublishNavigationAudit(r.Context(), payload); err != nil {
		h.logger.Warn("publish navigation audit", slog.String("path", d.Path), slog.Any("error", err))
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
