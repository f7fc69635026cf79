// Package web exposes the rendered widgets over HTTP: configured widgets
// by id, ad-hoc renders from query parameters, and the stylesheet for the
// fragment's fixed class names.
package web

import (
	"crypto/subtle"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"eventcal/internal/config"
	appLog "eventcal/internal/log"
	"eventcal/internal/pipeline"
)

// Stylesheet covers the class names the formatter emits.
const Stylesheet = `.eventcal{font-family:sans-serif}
.eventcal-item{display:flex;gap:.75em;margin:.5em 0}
.eventcal-date{text-align:center;min-width:3.5em}
.eventcal-month{display:block;text-transform:uppercase;font-size:.8em}
.eventcal-day{display:block;font-size:1.4em;font-weight:bold}
.eventcal-year{display:block;font-size:.8em;color:#666}
.eventcal-title{font-weight:bold;display:block}
.eventcal-time{font-size:.9em;color:#666}
.eventcal-more{display:block;font-size:.9em}
`

// Server serves the widget endpoints.
type Server struct {
	cfg    *config.Config
	pipe   *pipeline.Pipeline
	router *mux.Router
}

// NewServer constructs a Server on an already wired pipeline.
func NewServer(cfg *config.Config, pipe *pipeline.Pipeline) *Server {
	s := &Server{
		cfg:    cfg,
		pipe:   pipe,
		router: mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/widget.css", s.handleStylesheet).Methods(http.MethodGet)
	s.router.HandleFunc("/widgets/{id}", s.handleWidget).Methods(http.MethodGet)
	s.router.HandleFunc("/render", s.handleRender).Methods(http.MethodGet)
}

// Handler returns the http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware protects all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="eventcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write([]byte(Stylesheet))
}

// handleWidget renders a widget declared in the config file.
func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	widget, ok := s.cfg.Widget(id)
	if !ok {
		http.Error(w, "unknown widget", http.StatusNotFound)
		return
	}
	s.serveElement(w, r, pipeline.WidgetElement(widget), "widget", id)
}

// handleRender renders an ad-hoc widget straight from query parameters,
// using the same attribute names as configured widgets.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	el := &pipeline.MapElement{Attrs: attrsFromQuery(r.URL.Query())}
	s.serveElement(w, r, el, "widget", "ad-hoc")
}

func (s *Server) serveElement(w http.ResponseWriter, r *http.Request, el *pipeline.MapElement, kv ...any) {
	reqID := uuid.NewString()
	kv = append([]any{"request_id", reqID, "remote", r.RemoteAddr}, kv...)
	appLog.Info("render request", kv...)

	if err := s.pipe.RunOne(r.Context(), el); err != nil {
		appLog.Error("render request failed", err, "request_id", reqID)
		http.Error(w, "render failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(el.Content))
}

func attrsFromQuery(values url.Values) map[string]string {
	attrs := make(map[string]string, len(values))
	for _, name := range []string{"begin", "end", "count", "tags", "categories", "show-year"} {
		if v := values.Get(name); v != "" {
			attrs[name] = v
		}
	}
	return attrs
}
