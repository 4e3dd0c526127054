// Package web serves the SkillSphere pages. Every page is rendered on the
// server from the backend's data; the browser only holds a session cookie.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkrupp/skillsphere/internal/domain"
	context_ "github.com/mkrupp/skillsphere/internal/infra/context"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	http_ "github.com/mkrupp/skillsphere/internal/infra/transport/http"
	"github.com/mkrupp/skillsphere/internal/svc/applicationsvc"
	"github.com/mkrupp/skillsphere/internal/svc/authsvc"
	"github.com/mkrupp/skillsphere/internal/svc/draftsvc"
	"github.com/mkrupp/skillsphere/internal/svc/jobsvc"
	"github.com/mkrupp/skillsphere/internal/svc/messagesvc"
	"github.com/mkrupp/skillsphere/internal/svc/profilesvc"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
)

const paramDraftID = "draftID"

// FlashStore queues toast messages across a redirect.
type FlashStore interface {
	PushFlash(ctx context.Context, sessionID string, flash domain.Flash) error
	PopFlashes(ctx context.Context, sessionID string) ([]domain.Flash, error)
}

// Services bundles everything the pages talk to.
type Services struct {
	Sessions     sessionsvc.SessionService
	Auth         authsvc.AuthService
	Jobs         jobsvc.JobService
	Applications applicationsvc.ApplicationService
	Messages     messagesvc.MessageService
	Profiles     profilesvc.ProfileService
	Drafts       draftsvc.DraftService
	Flashes      FlashStore
}

// Handler serves all pages.
type Handler struct {
	svc    Services
	cfg    WebConfig
	pages  map[string]*template.Template
	router chi.Router
	log    logging.Logger
}

var _ http_.HTTPTransport = (*Handler)(nil)

// NewHandler parses the page templates and sets up the routes.
func NewHandler(svc Services, cfg WebConfig) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("parse pages: %w", err)
	}

	h := &Handler{
		svc:   svc,
		cfg:   cfg,
		pages: pages,
		log:   logging.GetLogger("web.handler"),
	}

	h.router = h.routes()

	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(h.cfg.RequestTimeout))
	r.Use(func(next http.Handler) http.Handler {
		return http_.SessionMiddleware(next, h.cfg.Session, h.log)
	})
	r.Use(viewerMiddleware)

	r.Get("/healthz", handleHealthCheck)
	r.Handle("/static/*", staticHandler())

	r.Get("/", h.handleLanding)
	r.Get("/about", h.handleAbout)

	r.Get("/login", h.handleLoginForm)
	r.Post("/login", h.handleLogin)
	r.Get("/signup", h.handleSignupForm)
	r.Post("/signup", h.handleSignup)
	r.Post("/logout", h.handleLogout)

	r.Get("/dashboard", h.handleDashboard)
	r.Post("/dashboard", h.handlePostJob)
	r.Get("/jobs", h.handleJobs)

	r.Route("/applications", func(r chi.Router) {
		r.Get("/", h.handleApplications)
		r.Post("/apply", h.handleApply)
		r.Post("/messages", h.handleSendMessage)
	})

	r.Get("/status", h.handleStatus)

	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.handleProfile)
		r.Post("/", h.handleUpdateProfile)
		r.Post("/image", h.handleStageImage)
		r.Post("/discard", h.handleDiscardImage)
		r.Get("/draft/{"+paramDraftID+"}", h.handleDraftImage)
	})

	r.NotFound(h.handleNotFound)

	return r
}

// sessionID returns the browser session of the request. The session
// middleware guarantees one exists.
func sessionID(r *http.Request) string {
	id, _ := context_.SessionIDFromContext(r.Context())

	return id
}

type viewerKey struct{}

// resolvedViewer holds the outcome of the first viewer lookup of a request.
type resolvedViewer struct {
	once sync.Once
	view domain.View
	err  error
}

// viewerMiddleware makes all viewer lookups of a request share one resolution.
func viewerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), viewerKey{}, &resolvedViewer{}) //nolint:exhaustruct
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// viewer resolves the signed-in user once per request. Anonymous sessions
// fail with domain.ErrNoToken without a backend call.
func (h *Handler) viewer(r *http.Request) (domain.View, error) {
	resolved, ok := r.Context().Value(viewerKey{}).(*resolvedViewer)
	if !ok {
		return h.resolveViewer(r)
	}

	resolved.once.Do(func() {
		resolved.view, resolved.err = h.resolveViewer(r)
	})

	return resolved.view, resolved.err
}

func (h *Handler) resolveViewer(r *http.Request) (domain.View, error) {
	ctx := r.Context()
	id := sessionID(r)

	if _, err := h.svc.Sessions.Token(ctx, id); err != nil {
		return nil, err //nolint:wrapcheck
	}

	view, err := h.svc.Sessions.Current(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return view, nil
}

// signedOut reports whether err means the visitor must log in again.
func signedOut(err error) bool {
	return errors.Is(err, domain.ErrNoToken) || errors.Is(err, domain.ErrUnauthenticated)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not_found.html", "Page not found", nil)
}
