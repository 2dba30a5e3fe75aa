// Package api serves the /foods resource over JSON, in the shape json-server
// exposes it.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/bryan-buckman/gorestaurant/internal/database"
	"github.com/bryan-buckman/gorestaurant/internal/menufile"
	"github.com/bryan-buckman/gorestaurant/internal/model"
)

// maxBody caps request bodies, menu imports included.
const maxBody = 4 << 20

// Server is the /foods HTTP API.
type Server struct {
	db     database.Store
	log    zerolog.Logger
	router chi.Router
}

// New creates the API server.
func New(db database.Store, logger zerolog.Logger) *Server {
	s := &Server{
		db:  db,
		log: logger.With().Str("component", "api").Logger(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/foods", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Get("/{foodID}", s.handleGet)
		r.Put("/{foodID}", s.handleUpdate)
		r.Delete("/{foodID}", s.handleDelete)
	})

	s.router = r
}

// ServeHTTP lets the server be mounted or tested directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on addr.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. The listener is already bound, so
// clients dialing its address connect even before Serve runs.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Str("db", s.db.DatabaseType()).Msg("API starting")
	return http.Serve(ln, s.router)
}

// foodBody is what clients send on create and update. Available is a
// pointer so create can default it to true and update can leave it alone.
type foodBody struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
}

func (b foodBody) input() model.FoodInput {
	return model.FoodInput{Name: b.Name, Image: b.Image, Price: b.Price, Description: b.Description}
}

// --- Handlers ---

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	foods, err := s.db.ListFoods()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, foods)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := foodID(w, r)
	if !ok {
		return
	}
	food, err := s.db.GetFood(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeFood(w, r)
	if !ok {
		return
	}
	available := body.Available == nil || *body.Available
	created, err := s.db.CreateFood(body.input().WithAvailable(available))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Int64("id", created.ID).Str("name", created.Name).Msg("Food created")
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := foodID(w, r)
	if !ok {
		return
	}
	body, ok := decodeFood(w, r)
	if !ok {
		return
	}

	// A nil Available keeps the stored flag.
	updated, err := s.db.UpdateFood(id, body.input(), body.Available)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := foodID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteFood(id); err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Int64("id", id).Msg("Food deleted")
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	foods, err := s.db.ListFoods()
	if err != nil {
		s.fail(w, err)
		return
	}
	data, err := menufile.Export(foods)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=menu.json")
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	foods, err := menufile.Parse(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse menu: %v", err))
		return
	}
	imported, err := s.db.ImportFoods(foods)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Int("imported", imported).Msg("Menu imported")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"imported": imported,
		"total":    len(foods),
	})
}

// --- Helpers ---

func foodID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "foodID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid food id")
		return 0, false
	}
	return id, true
}

func decodeFood(w http.ResponseWriter, r *http.Request) (foodBody, bool) {
	var body foodBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return body, false
	}
	if err := body.input().Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return body, false
	}
	return body, true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Error().Err(err).Msg("Storage error")
	writeError(w, http.StatusInternalServerError, "Storage error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
