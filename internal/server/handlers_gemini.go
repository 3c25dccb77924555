package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/backend"
	"github.com/jonathan/career-network/internal/resume"
	"github.com/jonathan/career-network/internal/types"
)

const (
	msgEmailInputsRequired = "Profile and resume are required"
	msgLookupInputs        = "University and skills array are required"
)

// emailInput is a cold email request normalized from either the JSON or the
// multipart form of /api/gemini.
type emailInput struct {
	Profile    string
	ResumeText string
	Resume     backend.File
}

// handleColdEmail drafts an outreach email to a connection.
func (s *Server) handleColdEmail(w http.ResponseWriter, r *http.Request) {
	in, err := s.readEmailInput(w, r)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if in.Profile == "" || len(in.Resume.Data) == 0 {
		s.errorResponse(w, http.StatusBadRequest, msgEmailInputsRequired)
		return
	}

	if !s.backend.HasService() {
		s.coldEmailLocally(r.Context(), w, in)
		return
	}

	resp, err := s.backend.ColdEmail(r.Context(), in.Profile, in.Resume)
	if err != nil {
		if status := upstreamStatus(err); status != 0 {
			s.errorResponse(w, status, "Failed to generate cold email")
			return
		}
		s.logger.Error("cold email failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body)
}

// readEmailInput accepts the JSON body {profileJson, resumeText} or the
// multipart form {profile, resume}. A JSON request without resume text
// falls back to the resume in scratch storage.
func (s *Server) readEmailInput(w http.ResponseWriter, r *http.Request) (emailInput, error) {
	if isMultipart(r) {
		if err := s.parseMultipart(w, r); err != nil {
			return emailInput{}, err
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		in := emailInput{Profile: r.FormValue("profile")}
		file, header, err := r.FormFile("resume")
		if err != nil {
			return in, nil
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			return in, err
		}
		in.Resume = backend.File{Name: header.Filename, ContentType: header.Header.Get("Content-Type"), Data: data}
		return in, nil
	}

	var req types.ColdEmailRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		return emailInput{}, err
	}
	in := emailInput{Profile: req.ProfileJSON, ResumeText: req.ResumeText}
	if in.ResumeText == "" {
		if _, text, err := s.loadResumeText(); err == nil {
			in.ResumeText = text
		} else {
			s.logger.Debug("no stored resume for cold email", zap.Error(err))
		}
	}
	if in.ResumeText != "" {
		in.Resume = backend.File{Name: "resume.txt", ContentType: resume.MIMEPlain, Data: []byte(in.ResumeText)}
	}
	return in, nil
}

// coldEmailLocally drafts the email with the configured assistant.
func (s *Server) coldEmailLocally(ctx context.Context, w http.ResponseWriter, in emailInput) {
	if s.assistant == nil {
		s.errorResponse(w, http.StatusInternalServerError, errNoUpstream.Error())
		return
	}

	text := in.ResumeText
	if text == "" {
		var err error
		text, err = resume.Extract(in.Resume.Name, in.Resume.ContentType, in.Resume.Data)
		if err != nil {
			s.errorFromErr(w, err)
			return
		}
	}

	email, err := s.assistant.ColdEmail(ctx, in.Profile, text)
	if err != nil {
		s.logger.Error("local cold email failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"email": email})
}

// handleLookupSkillClasses recommends university classes for a skill list.
// With ?normalize=1 the reply is reduced to {classes:[{className, description}]}.
func (s *Server) handleLookupSkillClasses(w http.ResponseWriter, r *http.Request) {
	var req types.SkillClassRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorFromErr(w, err)
			return
		}
		s.errorResponse(w, http.StatusBadRequest, msgLookupInputs)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, msgLookupInputs)
		return
	}

	body, err := s.lookupClasses(r.Context(), req.University, req.Skills)
	if err != nil {
		if status := upstreamStatus(err); status != 0 {
			s.errorResponse(w, status, "Failed to lookup skill classes")
			return
		}
		s.logger.Error("skill class lookup failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if normalize, _ := strconv.ParseBool(r.URL.Query().Get("normalize")); normalize {
		classes, err := backend.NormalizeClasses(body)
		if err != nil {
			s.logger.Warn("unparseable class lookup reply", zap.Error(err))
			s.errorResponse(w, http.StatusBadGateway, "Failed to parse skill classes")
			return
		}
		s.jsonResponse(w, http.StatusOK, map[string]any{"classes": classes})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// lookupClasses asks the upstream service, or the assistant when no service
// is configured. The result has no markdown fence.
func (s *Server) lookupClasses(ctx context.Context, university string, skills []string) ([]byte, error) {
	if s.backend.HasService() {
		return s.backend.LookupSkillClasses(ctx, university, skills)
	}
	if s.assistant == nil {
		return nil, errNoUpstream
	}
	return s.assistant.LookupClasses(ctx, university, skills)
}

// classRecommendations fetches and normalizes classes for the portfolio.
func (s *Server) classRecommendations(ctx context.Context, university string, skills []string) ([]types.ClassRecommendation, error) {
	body, err := s.lookupClasses(ctx, university, skills)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("class lookup returned invalid JSON")
	}
	return backend.NormalizeClasses(body)
}
