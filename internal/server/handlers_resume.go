package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/annotation"
	"github.com/jonathan/career-network/internal/backend"
	"github.com/jonathan/career-network/internal/resume"
	"github.com/jonathan/career-network/internal/scratch"
)

// headerResumeFilename names the stored file returned by /api/get-resume/file.
const headerResumeFilename = "X-Resume-Filename"

// AnnotationResponse is the reply of /api/resumeAnnotations.
type AnnotationResponse struct {
	Success  bool              `json:"success"`
	PDF      string            `json:"pdf"`
	Metadata map[string]any    `json:"metadata"`
	Message  string            `json:"message"`
	Review   annotation.Review `json:"review"`
}

// handleResumeAnnotations sends a resume to the annotation service and
// unpacks the annotated PDF and its feedback.
func (s *Server) handleResumeAnnotations(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorFromErr(w, err)
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil || header.Size == 0 {
		if file != nil {
			_ = file.Close()
		}
		s.errorResponse(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	data, err := io.ReadAll(file)
	_ = file.Close()
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	resp, err := s.backend.Annotate(r.Context(), backend.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		var be *backend.Error
		switch {
		case errors.As(err, &be) && be.Transport():
			s.errorResponse(w, http.StatusServiceUnavailable, fmt.Sprintf(
				"Annotation service unavailable at %s. Make sure the service is running. Details: %v",
				s.backend.ServiceURL(backend.PathAnnotate), be.Cause))
		case errors.As(err, &be):
			s.errorResponse(w, be.Status, fmt.Sprintf("Annotation service error (%d): %s", be.Status, be.Body))
		default:
			s.logger.Error("annotation failed", zap.Error(err))
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	var result annotation.Result
	found := false
	switch {
	case annotation.IsMultipart(resp.ContentType):
		result, found = s.splitter.Split(resp.Body, resp.ContentType)
	case annotation.IsPDF(resp.ContentType):
		result, found = annotation.Result{PDF: resp.Body}, len(resp.Body) > 0
	}
	if !found {
		s.logger.Warn("annotation reply held no PDF", zap.String("content_type", resp.ContentType), zap.Int("bytes", len(resp.Body)))
		s.errorResponse(w, http.StatusInternalServerError, "Could not extract annotated resume from service response")
		return
	}

	metadata := result.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	s.jsonResponse(w, http.StatusOK, AnnotationResponse{
		Success:  true,
		PDF:      base64.StdEncoding.EncodeToString(result.PDF),
		Metadata: metadata,
		Message:  "Resume annotation completed",
		Review:   annotation.NewReview(metadata),
	})
}

// loadResumeText returns the first stored .docx and its text.
func (s *Server) loadResumeText() (string, string, error) {
	name, data, err := s.loadResumeFile()
	if err != nil {
		return "", "", err
	}
	text, err := resume.Extract(name, resume.MIMEDocx, data)
	if err != nil {
		return name, "", err
	}
	return name, text, nil
}

func (s *Server) loadResumeFile() (string, []byte, error) {
	name, err := s.scratch.FindFirst(".docx")
	if err != nil {
		return "", nil, err
	}
	data, err := s.scratch.Read(name)
	if err != nil {
		return name, nil, err
	}
	return name, data, nil
}

// handleGetResumeText returns the text of the stored resume.
func (s *Server) handleGetResumeText(w http.ResponseWriter, _ *http.Request) {
	_, text, err := s.loadResumeText()
	if err != nil {
		s.resumeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"text": text})
}

// handleGetResumeFile returns the stored resume bytes.
func (s *Server) handleGetResumeFile(w http.ResponseWriter, _ *http.Request) {
	name, data, err := s.loadResumeFile()
	if err != nil {
		s.resumeError(w, err)
		return
	}
	w.Header().Set("Content-Type", resume.MIMEDocx)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set(headerResumeFilename, name)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) resumeError(w http.ResponseWriter, err error) {
	if errors.Is(err, scratch.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, "No .docx file found in temp folder")
		return
	}
	s.logger.Error("failed to read resume", zap.Error(err))
	s.errorResponse(w, http.StatusInternalServerError, "Failed to read resume file")
}
