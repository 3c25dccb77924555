package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/types"
)

// Temp management actions.
const (
	actionClear    = "clear"
	actionSaveJSON = "save-json"
	actionSaveFile = "save-file"
)

// handleTempManagement clears the scratch folder or saves a file into it,
// selected by ?action=.
func (s *Server) handleTempManagement(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case actionClear:
		s.clearScratch(w, r)
	case actionSaveJSON:
		s.saveScratchJSON(w, r)
	case actionSaveFile:
		s.saveScratchFile(w, r)
	default:
		s.errorResponse(w, http.StatusBadRequest, "Invalid action")
	}
}

func (s *Server) clearScratch(w http.ResponseWriter, r *http.Request) {
	n, err := s.scratch.Clear(r.Context())
	if err != nil {
		s.tempError(w, err)
		return
	}
	s.logger.Info("scratch cleared", zap.Int("files", n))
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Temp folder cleared",
	})
}

func (s *Server) saveScratchJSON(w http.ResponseWriter, r *http.Request) {
	var req types.SaveJSONRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.tempError(w, err)
		return
	}
	name, err := s.scratch.SaveJSON(r.Context(), req.Filename, req.Data)
	if err != nil {
		s.tempError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "filename": name})
}

func (s *Server) saveScratchFile(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.tempError(w, err)
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = file.Close() }()

	filename := r.FormValue("filename")
	if filename == "" {
		filename = header.Filename
	}
	name, err := s.scratch.SaveFile(r.Context(), filename, file)
	if err != nil {
		s.tempError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "filename": name})
}

// tempError reports client mistakes with their own status and everything
// else as 500 with the error text.
func (s *Server) tempError(w http.ResponseWriter, err error) {
	if status := HTTPStatus(err); status < http.StatusInternalServerError {
		s.errorResponse(w, status, errorMessage(err))
		return
	}
	s.logger.Error("temp management failed", zap.Error(err))
	s.errorResponse(w, http.StatusInternalServerError, err.Error())
}
