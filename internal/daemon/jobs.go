package daemon

import (
	"context"
	"path/filepath"
	"time"

	"scenecatalog/internal/pipeline"
)

// startJob schedules a scene-detection run for a registered video.
func (s *Server) startJob(videoID string) (*Job, error) {
	s.mu.Lock()
	video, ok := s.videos[videoID]
	if !ok {
		s.mu.Unlock()
		return nil, errNotFound
	}
	for _, job := range s.jobs {
		if job.VideoID == videoID && (job.Status == "queued" || job.Status == "running") {
			s.mu.Unlock()
			return job, nil
		}
	}
	video.Status = "processing"
	video.LastError = nil

	jobID := newID("job_")
	now := time.Now().UTC()
	job := &Job{
		ID:        jobID,
		VideoID:   videoID,
		Status:    "queued",
		Stage:     string(pipeline.StageLoadingModel),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[jobID] = job

	cfg := s.config
	videoPath := video.Path
	s.mu.Unlock()

	go s.runJob(jobID, videoID, videoPath, cfg)
	return job, nil
}

// runJob executes the pipeline for one video and mirrors its progress into
// the job record. Events also flow to the websocket hub keyed by job id.
func (s *Server) runJob(jobID, videoID, videoPath string, cfg Config) {
	sink := pipeline.SinkFunc(func(runID string, ev pipeline.Event) {
		s.hub.Send(runID, ev)
		s.mu.Lock()
		if job, ok := s.jobs[runID]; ok {
			job.Status = "running"
			job.Stage = ev.Stage
			job.Progress = ev.Progress
			job.Message = ev.Message
			job.UpdatedAt = time.Now().UTC()
		}
		s.mu.Unlock()
	})

	runner := pipeline.NewRunner(s.store, sink, pipeline.Options{
		FrameRate:           cfg.FrameRate,
		SimilarityThreshold: cfg.SimilarityThreshold,
		BatchSize:           cfg.BatchSize,
		GeneralThreshold:    cfg.GeneralThreshold,
		CharacterThreshold:  cfg.CharacterThreshold,
		ModelRepo:           cfg.ModelRepo,
		TempRoot:            s.tempRoot,
	})

	category := filepath.Base(filepath.Dir(videoPath))
	list, err := runner.Run(context.Background(), jobID, videoPath, category)

	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	video := s.videos[videoID]
	job.UpdatedAt = now
	if err != nil {
		job.Status = "failed"
		job.Stage = string(pipeline.StageError)
		job.Message = err.Error()
		if video != nil {
			video.Status = "failed"
			msg := err.Error()
			video.LastError = &msg
		}
		return
	}
	job.Status = "done"
	job.Stage = string(pipeline.StageCompleted)
	job.Progress = 100
	job.Message = "Processing complete"
	if video != nil {
		video.Status = "processed"
		video.SceneCount = len(list)
		video.LastError = nil
		video.LastProcessedAt = &now
	}
}
