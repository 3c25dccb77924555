package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/types"
)

// handleSearch returns a handler that searches the profile directory by field
// using the q query parameter.
func (s *Server) handleSearch(field types.SearchField) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")

		profiles, err := s.directory.SearchProfiles(r.Context(), field, query)
		if err != nil {
			if status := upstreamStatus(err); status != 0 {
				s.errorResponse(w, status, "Failed to fetch profiles")
				return
			}
			s.logger.Error("profile search failed", zap.String("field", string(field)), zap.Error(err))
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.jsonResponse(w, http.StatusOK, profiles)
	}
}
