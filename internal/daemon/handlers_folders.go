package daemon

import (
	"net/http"
	"os"
	"sort"
)

// handleFolders godoc
// @Summary List category folders
// @Description Scans the videos root and returns its subdirectories.
// @Tags folders
// @Produce json
// @Success 200 {object} FoldersResponse
// @Failure 404 {object} ErrorResponse
// @Router /folders [get]
func (s *Server) handleFolders(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.videosRoot)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "videos root not found: "+s.videosRoot)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	folders := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)
	writeJSON(w, http.StatusOK, map[string][]string{"folders": folders})
}
