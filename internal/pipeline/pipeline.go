// Package pipeline sequences the scene-detection run for a single video:
// model load, frame extraction, batched tagging, segmentation, aggregation,
// and persistence, with staged progress events and unconditional cleanup of
// the run's temporary frame storage.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scenecatalog/internal/extract"
	"scenecatalog/internal/scenes"
	"scenecatalog/internal/tagger"
)

// Stage identifies where a run currently is.
type Stage string

const (
	StageLoadingModel      Stage = "loading_model"
	StageExtracting        Stage = "extracting"
	StageTagging           Stage = "tagging"
	StageAnalyzing         Stage = "analyzing"
	StageSaving            Stage = "saving"
	StagePersistingCatalog Stage = "persisting_catalog"
	StageCompleted         Stage = "completed"
	StageError             Stage = "error"
)

// Event is one progress report. Progress is on the overall 0-100 scale.
type Event struct {
	Status   string `json:"status"`
	Stage    string `json:"stage"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// Sink receives progress events for a run. Delivery is fire-and-forget;
// sending with no subscriber attached is a silent no-op.
type Sink interface {
	Send(runID string, ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(runID string, ev Event)

func (f SinkFunc) Send(runID string, ev Event) { f(runID, ev) }

// Classifier is the tagging surface the pipeline depends on.
type Classifier interface {
	Load(ctx context.Context, modelRepo string) error
	PredictBatch(paths []string, generalThreshold, characterThreshold float64) (map[string]scenes.TagSet, error)
}

// Sampler extracts frames and probes duration.
type Sampler interface {
	ExtractFrames(videoPath, framesDir string, cfg extract.Config) (int, error)
	Duration(videoPath string) (float64, error)
}

// CatalogStore is the subset of the catalog the pipeline writes through.
type CatalogStore interface {
	UpsertVideo(name, category, filePath string) (int64, error)
	ReplaceScenes(videoID int64, list []scenes.Scene) error
}

// Options tune one run. Zero fields fall back to defaults.
type Options struct {
	FrameRate           float64
	SimilarityThreshold float64
	BatchSize           int
	GeneralThreshold    float64
	CharacterThreshold  float64
	ModelRepo           string
	TempRoot            string
	// StepTimeout bounds the external tool and model-fetch calls so a hung
	// process fails the run instead of stalling it forever.
	StepTimeout time.Duration
}

const (
	DefaultSimilarityThreshold = 0.4
	DefaultFrameRate           = 1.0
	DefaultTempRoot            = "temp_processing"
	DefaultStepTimeout         = 30 * time.Minute
)

func (o Options) withDefaults() Options {
	if o.FrameRate <= 0 {
		o.FrameRate = DefaultFrameRate
	}
	if o.SimilarityThreshold <= 0 || o.SimilarityThreshold >= 1 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.BatchSize <= 0 {
		o.BatchSize = tagger.DefaultBatchSize
	}
	if o.GeneralThreshold <= 0 {
		o.GeneralThreshold = tagger.DefaultGeneralThreshold
	}
	if o.CharacterThreshold <= 0 {
		o.CharacterThreshold = tagger.DefaultCharacterThreshold
	}
	if o.ModelRepo == "" {
		o.ModelRepo = tagger.DefaultModelRepo
	}
	if o.TempRoot == "" {
		o.TempRoot = DefaultTempRoot
	}
	if o.StepTimeout <= 0 {
		o.StepTimeout = DefaultStepTimeout
	}
	return o
}

// ffmpegSampler is the production Sampler.
type ffmpegSampler struct{}

func (ffmpegSampler) ExtractFrames(videoPath, framesDir string, cfg extract.Config) (int, error) {
	return extract.ExtractFrames(videoPath, framesDir, cfg)
}

func (ffmpegSampler) Duration(videoPath string) (float64, error) {
	return extract.Duration(videoPath)
}

// Runner executes scene-detection runs. A single Runner is safe for
// concurrent runs; each run gets its own temp workspace and the shared
// classifier serializes inference internally.
type Runner struct {
	Classifier Classifier
	Sampler    Sampler
	Store      CatalogStore
	Sink       Sink
	Opts       Options
}

// NewRunner wires the production components around store.
func NewRunner(store CatalogStore, sink Sink, opts Options) *Runner {
	return &Runner{
		Classifier: tagger.Shared(),
		Sampler:    ffmpegSampler{},
		Store:      store,
		Sink:       sink,
		Opts:       opts,
	}
}

func (r *Runner) emit(runID string, stage Stage, progress int, message string) {
	if r.Sink == nil {
		return
	}
	r.Sink.Send(runID, Event{Status: "processing", Stage: string(stage), Progress: progress, Message: message})
}

// Run executes the full pipeline for videoPath. The scene artifact is
// written next to the video as <base>_cenas.json and the catalog's scenes
// for the video are replaced in one transaction; both reflect the same list.
// The temporary frame directory is removed whether the run succeeds or
// fails. Returns the persisted scene list.
func (r *Runner) Run(ctx context.Context, runID, videoPath, category string) ([]scenes.Scene, error) {
	opts := r.Opts.withDefaults()
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	tempDir := filepath.Join(opts.TempRoot, fmt.Sprintf("temp_%s_%d", base, os.Getpid()))

	list, err := r.run(ctx, runID, videoPath, category, base, tempDir, opts)
	// Cleanup is the only step guaranteed regardless of outcome.
	if rmErr := os.RemoveAll(tempDir); rmErr != nil {
		log.Printf("pipeline %s: cleanup %s: %v", runID, tempDir, rmErr)
	}
	if err != nil {
		if r.Sink != nil {
			r.Sink.Send(runID, Event{Status: "error", Stage: string(StageError), Progress: 0, Message: err.Error()})
		}
		return nil, err
	}
	if r.Sink != nil {
		r.Sink.Send(runID, Event{Status: "completed", Stage: string(StageCompleted), Progress: 100, Message: "Processing complete"})
	}
	return list, nil
}

func (r *Runner) run(ctx context.Context, runID, videoPath, category, base, tempDir string, opts Options) ([]scenes.Scene, error) {
	r.emit(runID, StageLoadingModel, 0, "Loading tagging model...")
	loadCtx, cancelLoad := context.WithTimeout(ctx, opts.StepTimeout)
	err := r.Classifier.Load(loadCtx, opts.ModelRepo)
	cancelLoad()
	if err != nil {
		return nil, &ClassificationError{Err: fmt.Errorf("load model: %w", err)}
	}

	r.emit(runID, StageExtracting, 5, fmt.Sprintf("Extracting frames at %g FPS...", opts.FrameRate))
	numFrames, err := r.extractWithTimeout(ctx, videoPath, tempDir, opts)
	if err != nil {
		return nil, &ExtractionError{Path: videoPath, Err: err}
	}

	r.emit(runID, StageTagging, 15, "Tagging frames...")
	tags, err := r.tagFrames(ctx, runID, tempDir, numFrames, opts)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, &SegmentationError{Err: fmt.Errorf("no frames could be tagged")}
	}

	r.emit(runID, StageAnalyzing, 85, "Analyzing scenes...")
	duration, err := r.Sampler.Duration(videoPath)
	if err != nil {
		return nil, &ExtractionError{Path: videoPath, Err: fmt.Errorf("probe duration: %w", err)}
	}
	boundaries, ordered, err := scenes.DetectBoundaries(tags, opts.FrameRate, opts.SimilarityThreshold)
	if err != nil {
		return nil, &SegmentationError{Err: err}
	}
	list := scenes.BuildScenes(boundaries, ordered, tags, opts.FrameRate, duration)

	r.emit(runID, StageSaving, 90, "Saving results...")
	payload, err := json.MarshalIndent(list, "", "    ")
	if err != nil {
		return nil, &PersistenceError{Err: fmt.Errorf("encode scenes: %w", err)}
	}
	artifactPath := filepath.Join(filepath.Dir(videoPath), base+"_cenas.json")
	// Stage the artifact next to its final name and only rename after the
	// catalog commit, so the file and the store never diverge for a
	// successful run.
	staged := artifactPath + ".tmp"
	if err := os.WriteFile(staged, payload, 0o644); err != nil {
		return nil, &PersistenceError{Err: fmt.Errorf("write scene artifact: %w", err)}
	}

	r.emit(runID, StagePersistingCatalog, 95, "Updating catalog...")
	videoID, err := r.Store.UpsertVideo(base, category, videoPath)
	if err != nil {
		os.Remove(staged)
		return nil, &PersistenceError{Err: err}
	}
	if err := r.Store.ReplaceScenes(videoID, list); err != nil {
		os.Remove(staged)
		return nil, &PersistenceError{Err: err}
	}
	if err := os.Rename(staged, artifactPath); err != nil {
		return nil, &PersistenceError{Err: fmt.Errorf("finalize scene artifact: %w", err)}
	}

	log.Printf("pipeline %s: %s -> %d scenes", runID, filepath.Base(videoPath), len(list))
	return list, nil
}

// extractWithTimeout runs the sampler with a bounded deadline. The ffmpeg
// invocation itself is a blocking call, so it runs in a goroutine and the
// run fails when the deadline passes first.
func (r *Runner) extractWithTimeout(ctx context.Context, videoPath, tempDir string, opts Options) (int, error) {
	stepCtx, cancel := context.WithTimeout(ctx, opts.StepTimeout)
	defer cancel()

	type result struct {
		count int
		err   error
	}
	done := make(chan result, 1)
	go func() {
		count, err := r.Sampler.ExtractFrames(videoPath, tempDir, extract.Config{FrameRate: opts.FrameRate})
		done <- result{count, err}
	}()

	select {
	case res := <-done:
		return res.count, res.err
	case <-stepCtx.Done():
		return 0, fmt.Errorf("frame extraction timed out: %w", stepCtx.Err())
	}
}

// tagFrames classifies the sampled frames in batches, reporting progress
// proportionally inside the 15-85 band. Results are keyed by frame filename;
// a batch may legitimately return fewer entries than frames submitted.
func (r *Runner) tagFrames(ctx context.Context, runID, tempDir string, numFrames int, opts Options) (map[string]scenes.TagSet, error) {
	frames, err := extract.ListFrames(tempDir)
	if err != nil {
		return nil, &ExtractionError{Path: tempDir, Err: err}
	}

	tags := make(map[string]scenes.TagSet, len(frames))
	for start := 0; start < len(frames); start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, &ClassificationError{Err: err}
		}
		end := start + opts.BatchSize
		if end > len(frames) {
			end = len(frames)
		}
		batch, err := r.Classifier.PredictBatch(frames[start:end], opts.GeneralThreshold, opts.CharacterThreshold)
		if err != nil {
			return nil, &ClassificationError{Err: err}
		}
		for name, tagSet := range batch {
			tags[name] = tagSet
		}

		donePct := end * 100 / numFrames
		if donePct > 100 {
			donePct = 100
		}
		overall := 15 + donePct*70/100
		r.emit(runID, StageTagging, overall, fmt.Sprintf("Tagging frames (%d%%)", donePct))
	}
	return tags, nil
}
