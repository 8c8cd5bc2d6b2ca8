package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/inkpost/imgup/internal/storage"
)

// Server is the bundled reference backend speaking the simple-upload
// protocol: POST /{api} accepts the multipart form and answers with the
// stored image's id, GET /{api}/{imageID} serves the image back.
type Server struct {
	api       string
	authToken string
	store     storage.Provider
	logger    zerolog.Logger
}

// Options configures the reference backend.
type Options struct {
	// API is the endpoint path segment, e.g. images.
	API string
	// AuthToken is the expected bearer token. Empty disables the check.
	AuthToken string
	// Store persists uploaded images.
	Store storage.Provider
	// Logger receives request diagnostics.
	Logger zerolog.Logger
}

// New creates a Server from the given options.
func New(opts Options) *Server {
	return &Server{
		api:       strings.Trim(opts.API, "/"),
		authToken: opts.AuthToken,
		store:     opts.Store,
		logger:    opts.Logger,
	}
}

// Handler returns the HTTP surface of the backend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/"+s.api, s.handleUpload)
	r.Get("/"+s.api+"/{imageID}", s.handleFetch)
	return r
}

const maxUploadBytes = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.writeError(w, http.StatusUnauthorized, "missing or invalid authorization token")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body is not a valid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "form field 'file' is required")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	id, err := s.store.Store(r.Context(), file, name)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to store upload")
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store %s", name))
		return
	}

	s.logger.Info().Str("name", name).Str("image_id", id).Msg("stored upload")
	s.writeJSON(w, http.StatusCreated, map[string]string{"imageId": id})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "imageID")

	reader, err := s.store.Open(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("image %s not found", id))
		return
	}
	defer reader.Close()

	if ct := mime.TypeByExtension(filepath.Ext(id)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error().Err(err).Str("image_id", id).Msg("failed to stream image")
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	return ok && strings.EqualFold(scheme, "bearer") && token == s.authToken
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": message},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
