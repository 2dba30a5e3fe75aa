// Package server provides the dashboard web UI.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/bryan-buckman/gorestaurant/internal/dashboard"
	"github.com/bryan-buckman/gorestaurant/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// loadTimeout bounds the initial fetch of the menu.
const loadTimeout = 30 * time.Second

// flashParam is the query parameter holding a one-shot error banner.
const flashParam = "error"

// Server is the dashboard HTTP server. It renders the header, the food list
// and both modals from the dashboard's view and turns form posts into
// dashboard operations.
type Server struct {
	dash      *dashboard.Dashboard
	log       zerolog.Logger
	router    chi.Router
	templates *template.Template

	mu      sync.Mutex
	loadErr string // shown until the menu loads
}

// New creates a new server.
func New(dash *dashboard.Dashboard, logger zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"timeAgo": timeAgo,
		"price":   func(f model.Food) string { return f.FormattedPrice() },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		dash:      dash,
		log:       logger.With().Str("component", "server").Logger(),
		templates: tmpl,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Serve static files.
	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Page.
	r.Get("/", s.handleHome)

	// Modals.
	r.Post(dashboard.OpenAddModalAction, s.handleToggleAddModal)
	r.Post("/modal/edit", s.handleToggleEditModal)

	// Foods.
	r.Post("/foods", s.handleAddFood)
	r.Post("/foods/update", s.handleUpdateFood)
	r.Post("/foods/{foodID}/edit", s.handleEditFood)
	r.Post("/foods/{foodID}/delete", s.handleDeleteFood)
	r.Post("/foods/{foodID}/availability", s.handleAvailability)

	// API.
	r.Get("/api/state", s.handleState)

	s.router = r
}

// ServeHTTP lets the server be mounted or tested directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Mount loads the menu once. A failure is logged and leaves the list empty.
func (s *Server) Mount(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	if err := s.dash.Load(ctx); err != nil {
		s.mu.Lock()
		s.loadErr = "Could not load the menu: " + err.Error()
		s.mu.Unlock()
	}
}

// Start mounts the dashboard and starts serving.
func (s *Server) Start(addr string) error {
	s.Mount(context.Background())
	s.log.Info().Str("addr", addr).Msg("Dashboard starting")
	return http.ListenAndServe(addr, s.router)
}

// --- Page Handlers ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	flash := r.URL.Query().Get(flashParam)
	if flash == "" && !s.dash.Loaded() {
		s.mu.Lock()
		flash = s.loadErr
		s.mu.Unlock()
	}
	data := map[string]interface{}{
		"View":  s.dash.View(),
		"Flash": flash,
	}
	s.render(w, "layout.html", data)
}

// --- Modal Handlers ---

func (s *Server) handleToggleAddModal(w http.ResponseWriter, r *http.Request) {
	s.dash.ToggleAddModal()
	redirectHome(w, r)
}

func (s *Server) handleToggleEditModal(w http.ResponseWriter, r *http.Request) {
	s.dash.ToggleEditModal()
	redirectHome(w, r)
}

// --- Food Handlers ---

func (s *Server) handleAddFood(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseFoodForm(w, r)
	if !ok {
		return
	}
	if _, err := s.dash.Create(r.Context(), in); err != nil {
		redirectWithFlash(w, r, "Could not add the dish: "+err.Error())
		return
	}
	if s.dash.AddModalOpen() {
		s.dash.ToggleAddModal()
	}
	redirectHome(w, r)
}

func (s *Server) handleEditFood(w http.ResponseWriter, r *http.Request) {
	id, ok := s.foodID(w, r)
	if !ok {
		return
	}
	food, found := s.dash.Find(id)
	if !found {
		redirectWithFlash(w, r, fmt.Sprintf("Dish %d is no longer on the menu", id))
		return
	}
	s.dash.SelectForEdit(food)
	redirectHome(w, r)
}

func (s *Server) handleUpdateFood(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseFoodForm(w, r)
	if !ok {
		return
	}
	if _, err := s.dash.Update(r.Context(), in); err != nil {
		redirectWithFlash(w, r, "Could not save the dish: "+err.Error())
		return
	}
	if s.dash.EditModalOpen() {
		s.dash.ToggleEditModal()
	}
	redirectHome(w, r)
}

func (s *Server) handleDeleteFood(w http.ResponseWriter, r *http.Request) {
	id, ok := s.foodID(w, r)
	if !ok {
		return
	}
	if err := s.dash.Delete(r.Context(), id); err != nil {
		redirectWithFlash(w, r, "Could not delete the dish: "+err.Error())
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := s.foodID(w, r)
	if !ok {
		return
	}
	available, err := strconv.ParseBool(r.FormValue("available"))
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if _, err := s.dash.SetAvailable(r.Context(), id, available); err != nil {
		redirectWithFlash(w, r, "Could not change availability: "+err.Error())
		return
	}
	redirectHome(w, r)
}

// --- API Handlers ---

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.dash.View())
}

// --- Helpers ---

func (s *Server) parseFoodForm(w http.ResponseWriter, r *http.Request) (model.FoodInput, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return model.FoodInput{}, false
	}
	in := model.FoodInput{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Image:       strings.TrimSpace(r.PostFormValue("image")),
		Price:       strings.TrimSpace(r.PostFormValue("price")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	if err := in.Validate(); err != nil {
		redirectWithFlash(w, r, err.Error())
		return in, false
	}
	return in, true
}

func (s *Server) foodID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "foodID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid food id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// redirectWithFlash carries msg in the redirect so only the client that
// posted the form sees it.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, msg string) {
	q := url.Values{flashParam: {msg}}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("Template error")
		http.Error(w, "Render error", http.StatusInternalServerError)
	}
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
