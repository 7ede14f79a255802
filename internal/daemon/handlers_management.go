package daemon

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"scenecatalog/internal/scenes"
)

func isVideoFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".mov", ".mkv", ".avi", ".m4v", ".webm", ".wmv", ".mpg":
		return true
	default:
		return false
	}
}

// scanVideoFiles walks the videos root and returns every video file path,
// slash-normalized to match catalog rows.
func (s *Server) scanVideoFiles() (map[string]struct{}, error) {
	found := map[string]struct{}{}
	err := filepath.WalkDir(s.videosRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isVideoFile(d.Name()) {
			found[filepath.ToSlash(path)] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// handleSyncStatus godoc
// @Summary Catalog/filesystem sync report
// @Description Compares cataloged videos against the files on disk and reports orphan records and untracked files.
// @Tags management
// @Produce json
// @Success 200 {object} SyncStatusResponse
// @Failure 500 {object} ErrorResponse
// @Router /management/status [get]
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	dbPaths, err := s.store.FilePaths()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	fsPaths, err := s.scanVideoFiles()
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "videos root not found: "+s.videosRoot)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	orphans := []string{}
	for p := range dbPaths {
		if _, ok := fsPaths[p]; !ok {
			orphans = append(orphans, p)
		}
	}
	untracked := []string{}
	for p := range fsPaths {
		if _, ok := dbPaths[p]; !ok {
			untracked = append(untracked, p)
		}
	}
	sort.Strings(orphans)
	sort.Strings(untracked)

	writeJSON(w, http.StatusOK, SyncStatusResponse{
		DBVideoCount:         len(dbPaths),
		FilesystemVideoCount: len(fsPaths),
		OrphanRecords:        orphans,
		UntrackedFiles:       untracked,
	})
}

// handleCleanup godoc
// @Summary Remove orphan catalog records
// @Description Deletes catalog rows for the given file paths; scenes and tags cascade.
// @Tags management
// @Accept json
// @Produce json
// @Param request body PathListRequest true "Paths to remove"
// @Success 200 {object} CleanupResponse
// @Failure 400 {object} ErrorResponse
// @Router /management/cleanup [post]
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	var req PathListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json payload")
		return
	}
	if len(req.Paths) == 0 {
		writeJSON(w, http.StatusOK, CleanupResponse{Message: "no paths provided", DeletedCount: 0})
		return
	}
	deleted, err := s.store.DeleteVideosByPath(req.Paths)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CleanupResponse{Message: "cleanup complete", DeletedCount: deleted})
}

// handleScanNew godoc
// @Summary Ingest existing scene artifacts
// @Description Adds uncataloged videos whose _cenas.json artifacts already exist on disk.
// @Tags management
// @Accept json
// @Produce json
// @Param request body PathListRequest true "Video paths to ingest"
// @Success 200 {object} ScanNewResponse
// @Failure 400 {object} ErrorResponse
// @Router /management/scan_new [post]
func (s *Server) handleScanNew(w http.ResponseWriter, r *http.Request) {
	var req PathListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json payload")
		return
	}
	if len(req.Paths) == 0 {
		writeJSON(w, http.StatusOK, ScanNewResponse{Message: "no paths provided", AddedCount: 0})
		return
	}

	added := 0
	for _, path := range req.Paths {
		if err := s.ingestArtifact(path); err != nil {
			log.Printf("scan_new: %s: %v", path, err)
			continue
		}
		added++
	}
	writeJSON(w, http.StatusOK, ScanNewResponse{
		Message:    fmt.Sprintf("%d of %d videos added", added, len(req.Paths)),
		AddedCount: added,
	})
}

// ingestArtifact loads a video's _cenas.json from disk and catalogs it. This
// is the round-trip path for artifacts produced by earlier pipeline runs.
func (s *Server) ingestArtifact(videoPath string) error {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	artifactPath := filepath.Join(filepath.Dir(videoPath), base+"_cenas.json")

	payload, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	var list []scenes.Scene
	if err := json.Unmarshal(payload, &list); err != nil {
		return fmt.Errorf("parse artifact: %w", err)
	}

	category := filepath.Base(filepath.Dir(videoPath))
	videoID, err := s.store.UpsertVideo(base, category, videoPath)
	if err != nil {
		return err
	}
	return s.store.ReplaceScenes(videoID, list)
}
