package daemon

import (
	"net/http"

	"scenecatalog/internal/catalog"
)

// handleSearch godoc
// @Summary Search cataloged scenes
// @Description Finds videos containing scenes matching tag and duration criteria and returns the matching scenes for navigation.
// @Tags search
// @Accept json
// @Produce json
// @Param request body catalog.SearchRequest true "Search criteria"
// @Success 200 {object} map[string][]catalog.VideoMatch
// @Failure 400 {object} ErrorResponse
// @Router /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req catalog.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json payload")
		return
	}

	results, err := s.store.Search(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}
