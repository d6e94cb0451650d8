package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/roles"
	"github.com/gymops/gymops/internal/shared"
	"github.com/gymops/gymops/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	provider       *SessionProvider
	evaluator      *navigation.Evaluator
	validator      *validator.Validate
	loginPath      string
}

// NewHandler constructs a Handler instance. provider may be nil; when set its
// role cache is primed on login and cleared on logout.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, provider *SessionProvider) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		provider:       provider,
		validator:      validator.New(),
		loginPath:      navigation.DefaultLoginPath,
	}
}

// WithLoginPath moves the login form away from the default path.
func (h *Handler) WithLoginPath(p string) *Handler {
	if p != "" {
		h.loginPath = p
	}
	return h
}

// WithReturnTo sends users back to the page they asked for before signing
// in, provided the evaluator lets their role open it.
func (h *Handler) WithReturnTo(e *navigation.Evaluator) *Handler {
	h.evaluator = e
	return h
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(h.loginPath, h.showLogin)
	r.Post(h.loginPath, h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type loginPageData struct {
	Action string
	Form   loginForm
	Errors map[string]string
}

var fieldMessages = map[string]string{
	"Email.required":    "Enter your email address",
	"Email.email":       "Enter a valid email address",
	"Password.required": "Enter your password",
	"Password.min":      "Passwords are at least 8 characters",
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, loginPageData{Form: loginForm{}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	fieldErrs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				msg, ok := fieldMessages[fieldErr.Field()+"."+fieldErr.Tag()]
				if !ok {
					msg = fieldErr.Error()
				}
				fieldErrs[fieldErr.Field()] = msg
			}
		}
	}

	if len(fieldErrs) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err != nil {
			fieldErrs["general"] = "Invalid email or password"
		} else if sess == nil {
			h.logger.Error("session missing during login")
			fieldErrs["general"] = "Your session expired, please try again"
		} else {
			h.signIn(w, r, sess, user)
			return
		}
	}

	form.Password = ""
	h.renderLogin(w, r, http.StatusBadRequest, loginPageData{Form: form, Errors: fieldErrs})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, sess *shared.Session, user *User) {
	h.sessionManager.Rotate(sess)
	sess.SetUser(user.ID)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back"})
	if h.provider != nil {
		h.provider.Remember(user.ID, user.Role)
	}

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	target, ok := roles.DefaultLanding(user.Role)
	if !ok {
		h.logger.Warn("login with unknown role", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
		target = "/"
	}
	if back := sess.PopReturnTo(); back != "" && h.mayOpen(user.Role, back) {
		target = back
	}
	h.logger.Info("user signed in", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) mayOpen(role roles.Role, p string) bool {
	if h.evaluator == nil {
		return false
	}
	return h.evaluator.Evaluate(navigation.Session{Role: role}, p).Kind == navigation.KindAllow
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if id, ok := sess.UserID(); ok && h.provider != nil {
			h.provider.Forget(id)
		}
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, h.loginPath, http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, err := h.csrfManager.EnsureToken(sess)
	if err != nil {
		h.logger.Warn("csrf token", slog.Any("error", err))
	}
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	data.Action = h.loginPath
	viewData := view.TemplateData{
		Title:       "Sign in",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.RenderStatus(w, status, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
