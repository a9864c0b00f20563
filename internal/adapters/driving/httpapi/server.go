// Package httpapi exposes the chat pipeline over a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/loaders"
	"github.com/docsage/docsage/internal/logger"
)

// maxUploadBytes caps document uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// Server handles the HTTP API.
type Server struct {
	chat      driving.ChatService
	admin     driving.IndexAdmin
	registry  *loaders.Registry
	corpusDir string
}

// NewServer creates the API server.
func NewServer(chat driving.ChatService, admin driving.IndexAdmin, registry *loaders.Registry, corpusDir string) *Server {
	return &Server{
		chat:      chat,
		admin:     admin,
		registry:  registry,
		corpusDir: corpusDir,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /admin/rebuild", s.handleRebuild)
	mux.HandleFunc("POST /documents", s.handleUpload)
	mux.HandleFunc("DELETE /documents/{name}", s.handleDelete)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	return mux
}

// chatRequest is the POST /chat request body.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// chatResponse is the POST /chat response body.
type chatResponse struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	// A missing session ID starts a fresh conversation.
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	answer, err := s.chat.Answer(r.Context(), req.SessionID, req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Text:      answer,
	})
}

// rebuildResponse is the POST /admin/rebuild response body.
type rebuildResponse struct {
	Fingerprint string `json:"fingerprint"`
	Chunks      int    `json:"chunks"`
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Invalidate(); err != nil {
		writeDomainError(w, err)
		return
	}

	index, err := s.admin.GetOrRebuild(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	chunks, err := index.Count(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rebuildResponse{
		Fingerprint: s.admin.Fingerprint(),
		Chunks:      chunks,
	})
}

// uploadResponse is the POST /documents response body.
type uploadResponse struct {
	Name string `json:"name"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid file name %q", header.Filename))
		return
	}

	if _, err := s.registry.ForPath(name); err != nil {
		writeDomainError(w, err)
		return
	}

	dst, err := os.Create(filepath.Join(s.corpusDir, name))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("storing document: %w", err))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("storing document: %w", err))
		return
	}

	logger.Info("uploaded document %s", name)
	writeJSON(w, http.StatusCreated, uploadResponse{Name: name})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.PathValue("name"))
	if name == "." || name == "/" || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid file name %q", r.PathValue("name")))
		return
	}

	if err := os.Remove(filepath.Join(s.corpusDir, name)); err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, fmt.Errorf("no such document %q", name))
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Errorf("deleting document: %w", err))
		return
	}

	logger.Info("deleted document %s", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponse is the GET /status response body.
type statusResponse struct {
	State       string   `json:"state"`
	Fingerprint string   `json:"fingerprint"`
	Extensions  []string `json:"extensions"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		State:       s.admin.State().String(),
		Fingerprint: s.admin.Fingerprint(),
		Extensions:  s.registry.Extensions(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps domain sentinel errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrDirectoryNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrEmbeddingFailure), errors.Is(err, domain.ErrGenerationFailure):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
