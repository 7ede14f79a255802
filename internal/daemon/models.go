package daemon

import (
	"errors"
	"time"
)

// Config holds global pipeline settings.
type Config struct {
	FrameRate           float64 `json:"frame_rate" example:"1.0"`
	SimilarityThreshold float64 `json:"similarity_threshold" example:"0.4"`
	BatchSize           int     `json:"batch_size" example:"4"`
	GeneralThreshold    float64 `json:"general_threshold" example:"0.35"`
	CharacterThreshold  float64 `json:"character_threshold" example:"0.85"`
	ModelRepo           string  `json:"model_repo" example:"SmilingWolf/wd-swinv2-tagger-v3"`
}

// Video tracks a registered video and its processing state.
type Video struct {
	ID              string     `json:"video_id" example:"vid_abcd1234"`
	Name            string     `json:"name" example:"sample"`
	Path            string     `json:"path" example:"videos/studio_a/sample.mp4"`
	Category        string     `json:"category" example:"studio_a"`
	Status          string     `json:"status" example:"processing"`
	SceneCount      int        `json:"scene_count" example:"12"`
	LastProcessedAt *time.Time `json:"last_processed_at" example:"2024-01-01T12:00:00Z"`
	LastError       *string    `json:"last_error" example:"frame extraction failed"`
}

// Job is one scene-detection run.
type Job struct {
	ID        string    `json:"job_id" example:"job_abcd1234"`
	VideoID   string    `json:"video_id" example:"vid_abcd1234"`
	Status    string    `json:"status" example:"running"`
	Stage     string    `json:"stage" example:"tagging"`
	Progress  int       `json:"progress" example:"42"`
	Message   string    `json:"message" example:"Tagging frames (38%)"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-01T12:00:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-01T12:05:00Z"`
}

// ErrorResponse represents a standard error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"description of the error"`
}

// HealthResponse describes the health endpoint payload.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version" example:"0.1.0"`
}

// ConfigUpdateRequest allows partial configuration updates.
type ConfigUpdateRequest struct {
	FrameRate           *float64 `json:"frame_rate" example:"2.0"`
	SimilarityThreshold *float64 `json:"similarity_threshold" example:"0.5"`
	BatchSize           *int     `json:"batch_size" example:"8"`
	GeneralThreshold    *float64 `json:"general_threshold" example:"0.35"`
	CharacterThreshold  *float64 `json:"character_threshold" example:"0.85"`
	ModelRepo           *string  `json:"model_repo" example:"SmilingWolf/wd-swinv2-tagger-v3"`
}

// StatusResponse is a generic status wrapper.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// FoldersResponse lists the category folders under the videos root.
type FoldersResponse struct {
	Folders []string `json:"folders"`
}

// AddVideoRequest registers a new video for processing.
type AddVideoRequest struct {
	Path string `json:"path" example:"videos/studio_a/sample.mp4"`
}

// AddVideoResponse returns the created video ID.
type AddVideoResponse struct {
	VideoID string `json:"video_id" example:"vid_abcd1234"`
	Status  string `json:"status" example:"registered"`
}

// StartJobResponse provides the started job ID.
type StartJobResponse struct {
	Status string `json:"status" example:"started"`
	JobID  string `json:"job_id" example:"job_abcd1234"`
}

// PathListRequest carries file paths for management operations.
type PathListRequest struct {
	Paths []string `json:"paths"`
}

// SyncStatusResponse compares the catalog against the filesystem.
type SyncStatusResponse struct {
	DBVideoCount         int      `json:"db_video_count" example:"10"`
	FilesystemVideoCount int      `json:"filesystem_video_count" example:"12"`
	OrphanRecords        []string `json:"orphan_records"`
	UntrackedFiles       []string `json:"untracked_files"`
}

// CleanupResponse reports how many orphan records were removed.
type CleanupResponse struct {
	Message      string `json:"message" example:"cleanup complete"`
	DeletedCount int64  `json:"deleted_count" example:"2"`
}

// ScanNewResponse reports how many artifact files were ingested.
type ScanNewResponse struct {
	Message    string `json:"message" example:"2 of 3 videos added"`
	AddedCount int    `json:"added_count" example:"2"`
}

var errNotFound = errors.New("not found")
