package daemon

import (
	"net/http"
)

// handleHealth godoc
// @Summary Health check
// @Description Returns service health and version.
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

// handleConfig godoc
// @Summary Get or update configuration
// @Description Returns the current configuration on GET and updates selected fields on PUT.
// @Tags config
// @Accept json
// @Produce json
// @Param request body ConfigUpdateRequest false "Fields to update (PUT only)"
// @Success 200 {object} Config
// @Success 200 {object} StatusResponse "Update acknowledgment"
// @Failure 400 {object} ErrorResponse
// @Router /config [get]
// @Router /config [put]
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		cfg := s.config
		s.mu.RUnlock()
		writeJSON(w, http.StatusOK, cfg)
	case http.MethodPut:
		var req ConfigUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		if req.FrameRate != nil && *req.FrameRate <= 0 {
			writeError(w, http.StatusBadRequest, "frame_rate must be positive")
			return
		}
		if req.SimilarityThreshold != nil && (*req.SimilarityThreshold <= 0 || *req.SimilarityThreshold >= 1) {
			writeError(w, http.StatusBadRequest, "similarity_threshold must be in (0,1)")
			return
		}
		s.mu.Lock()
		if req.FrameRate != nil {
			s.config.FrameRate = *req.FrameRate
		}
		if req.SimilarityThreshold != nil {
			s.config.SimilarityThreshold = *req.SimilarityThreshold
		}
		if req.BatchSize != nil {
			s.config.BatchSize = *req.BatchSize
		}
		if req.GeneralThreshold != nil {
			s.config.GeneralThreshold = *req.GeneralThreshold
		}
		if req.CharacterThreshold != nil {
			s.config.CharacterThreshold = *req.CharacterThreshold
		}
		if req.ModelRepo != nil {
			s.config.ModelRepo = *req.ModelRepo
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
