package daemon

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleVideos godoc
// @Summary List or register videos
// @Description GET lists registered videos; POST registers a new video for scene detection.
// @Tags videos
// @Accept json
// @Produce json
// @Param request body AddVideoRequest true "Video to register"
// @Success 200 {array} Video
// @Success 200 {object} AddVideoResponse
// @Failure 400 {object} ErrorResponse
// @Router /videos [get]
// @Router /videos [post]
func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		list := make([]Video, 0, len(s.videos))
		for _, v := range s.videos {
			copyVideo := *v
			list = append(list, copyVideo)
		}
		s.mu.RUnlock()
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req struct {
			Path string `json:"path"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		if strings.TrimSpace(req.Path) == "" {
			writeError(w, http.StatusBadRequest, "path is required")
			return
		}
		s.mu.Lock()
		if id, exists := s.videoByPath[req.Path]; exists {
			s.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]string{
				"video_id": id,
				"status":   "already_exists",
			})
			return
		}
		videoID := newID("vid_")
		base := filepath.Base(req.Path)
		video := &Video{
			ID:       videoID,
			Name:     strings.TrimSuffix(base, filepath.Ext(base)),
			Path:     req.Path,
			Category: filepath.Base(filepath.Dir(req.Path)),
			Status:   "registered",
		}
		s.videos[videoID] = video
		s.videoByPath[req.Path] = videoID
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]string{
			"video_id": videoID,
			"status":   "registered",
		})
	}
}

// handleGetVideo godoc
// @Summary Get video details
// @Description Returns registration data and processing status for a video.
// @Tags videos
// @Produce json
// @Param videoID path string true "Video ID"
// @Success 200 {object} Video
// @Failure 404 {object} ErrorResponse
// @Router /videos/{videoID} [get]
func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	s.mu.RLock()
	video, ok := s.videos[videoID]
	if ok {
		copyVideo := *video
		s.mu.RUnlock()
		writeJSON(w, http.StatusOK, copyVideo)
		return
	}
	s.mu.RUnlock()
	writeError(w, http.StatusNotFound, "video not found")
}

// handleProcess godoc
// @Summary Start scene detection
// @Description Starts a scene-detection run for the given video. Progress is
// @Description available over the job's websocket progress channel.
// @Tags videos
// @Produce json
// @Param videoID path string true "Video ID"
// @Success 200 {object} StartJobResponse
// @Failure 404 {object} ErrorResponse
// @Router /videos/{videoID}/process [post]
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	job, err := s.startJob(videoID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			writeError(w, http.StatusNotFound, "video not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started", "job_id": job.ID})
}

// handleVideoFile streams a registered video's file contents.
func (s *Server) handleVideoFile(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	s.mu.RLock()
	video, ok := s.videos[videoID]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}
	if strings.TrimSpace(video.Path) == "" {
		writeError(w, http.StatusNotFound, "video path missing")
		return
	}

	http.ServeFile(w, r, video.Path)
}
