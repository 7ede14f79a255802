package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"scenecatalog/internal/extract"
	"scenecatalog/internal/scenes"
)

// fakeSampler writes numbered frame files so the tagging stage has real
// paths to walk.
type fakeSampler struct {
	frames   int
	duration float64
	err      error
}

func (f *fakeSampler) ExtractFrames(videoPath, framesDir string, cfg extract.Config) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return 0, err
	}
	for i := 1; i <= f.frames; i++ {
		name := fmt.Sprintf("frame_%06d.png", i)
		if err := os.WriteFile(filepath.Join(framesDir, name), []byte("img"), 0o644); err != nil {
			return 0, err
		}
	}
	return f.frames, nil
}

func (f *fakeSampler) Duration(videoPath string) (float64, error) {
	return f.duration, nil
}

// fakeClassifier serves scripted tag sets keyed by frame filename. Frames
// listed in skip are dropped, mimicking a corrupt image.
type fakeClassifier struct {
	tags map[string]scenes.TagSet
	skip map[string]bool
	err  error

	loaded string
}

func (f *fakeClassifier) Load(ctx context.Context, modelRepo string) error {
	f.loaded = modelRepo
	return nil
}

func (f *fakeClassifier) PredictBatch(paths []string, generalThreshold, characterThreshold float64) (map[string]scenes.TagSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]scenes.TagSet{}
	for _, p := range paths {
		name := filepath.Base(p)
		if f.skip[name] {
			continue
		}
		if tags, ok := f.tags[name]; ok {
			out[name] = tags
		} else {
			out[name] = scenes.TagSet{}
		}
	}
	return out, nil
}

type fakeStore struct {
	mu       sync.Mutex
	videos   map[string]int64
	replaced map[int64][]scenes.Scene
	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{videos: map[string]int64{}, replaced: map[int64][]scenes.Scene{}}
}

func (f *fakeStore) UpsertVideo(name, category, filePath string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.videos[name]; ok {
		return id, nil
	}
	id := int64(len(f.videos) + 1)
	f.videos[name] = id
	return id, nil
}

func (f *fakeStore) ReplaceScenes(videoID int64, list []scenes.Scene) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		return f.failNext
	}
	f.replaced[videoID] = list
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Send(runID string, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingSink) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func frameTags(i int, tags scenes.TagSet) (string, scenes.TagSet) {
	return fmt.Sprintf("frame_%06d.png", i), tags
}

func newTestRunner(t *testing.T, sampler Sampler, classifier Classifier, store CatalogStore, sink Sink) (*Runner, string) {
	t.Helper()
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "sample.mp4")
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &Runner{
		Classifier: classifier,
		Sampler:    sampler,
		Store:      store,
		Sink:       sink,
		Opts: Options{
			FrameRate:           1.0,
			SimilarityThreshold: 0.4,
			BatchSize:           2,
			TempRoot:            filepath.Join(dir, "temp_processing"),
		},
	}
	return runner, videoPath
}

func TestRunProducesArtifactAndCatalogEntry(t *testing.T) {
	tags := map[string]scenes.TagSet{}
	for i := 1; i <= 2; i++ {
		name, set := frameTags(i, scenes.TagSet{"a": 0.9, "b": 0.8})
		tags[name] = set
	}
	name, set := frameTags(3, scenes.TagSet{"c": 0.9})
	tags[name] = set

	sampler := &fakeSampler{frames: 3, duration: 3.0}
	classifier := &fakeClassifier{tags: tags}
	store := newFakeStore()
	sink := &recordingSink{}
	runner, videoPath := newTestRunner(t, sampler, classifier, store, sink)

	list, err := runner.Run(context.Background(), "run1", videoPath, "category_a")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("scenes = %d, want 2", len(list))
	}

	// The artifact sits next to the source video under <base>_cenas.json.
	artifact := filepath.Join(filepath.Dir(videoPath), "sample_cenas.json")
	payload, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var fromFile []scenes.Scene
	if err := json.Unmarshal(payload, &fromFile); err != nil {
		t.Fatalf("parse artifact: %v", err)
	}

	// File and store must reflect the same scene list.
	stored := store.replaced[store.videos["sample"]]
	if len(fromFile) != len(stored) {
		t.Fatalf("artifact has %d scenes, store has %d", len(fromFile), len(stored))
	}
	for i := range stored {
		if fromFile[i].StartTime != stored[i].StartTime || fromFile[i].EndTime != stored[i].EndTime {
			t.Errorf("scene %d diverges between file and store", i+1)
		}
	}

	if classifier.loaded == "" {
		t.Error("model was never loaded")
	}
	if last := sink.last(); last.Status != "completed" || last.Progress != 100 {
		t.Errorf("final event = %+v, want completed at 100", last)
	}

	// Temp frame storage is gone.
	if entries, err := os.ReadDir(runner.Opts.TempRoot); err == nil && len(entries) > 0 {
		t.Errorf("temp frames not cleaned up: %v", entries)
	}
}

func TestRunRerunReplacesScenes(t *testing.T) {
	tags := map[string]scenes.TagSet{}
	for i := 1; i <= 4; i++ {
		name, set := frameTags(i, scenes.TagSet{"a": 0.9})
		tags[name] = set
	}
	sampler := &fakeSampler{frames: 4, duration: 4.0}
	store := newFakeStore()
	runner, videoPath := newTestRunner(t, sampler, &fakeClassifier{tags: tags}, store, nil)

	first, err := runner.Run(context.Background(), "run1", videoPath, "c")
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Run(context.Background(), "run2", videoPath, "c")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Errorf("rerun changed scene count: %d vs %d", len(first), len(second))
	}
	if len(store.videos) != 1 {
		t.Errorf("rerun created a second video row: %v", store.videos)
	}
}

func TestRunExtractionFailure(t *testing.T) {
	sampler := &fakeSampler{err: errors.New("ffmpeg exploded")}
	store := newFakeStore()
	sink := &recordingSink{}
	runner, videoPath := newTestRunner(t, sampler, &fakeClassifier{}, store, sink)

	_, err := runner.Run(context.Background(), "run1", videoPath, "c")
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("error = %v, want ExtractionError", err)
	}
	if last := sink.last(); last.Status != "error" {
		t.Errorf("final event = %+v, want error status", last)
	}
	if len(store.replaced) != 0 {
		t.Error("failed run must not touch the catalog")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(videoPath), "sample_cenas.json")); !os.IsNotExist(err) {
		t.Error("failed run must not leave an artifact")
	}
}

func TestRunClassificationFailure(t *testing.T) {
	sampler := &fakeSampler{frames: 3, duration: 3.0}
	classifier := &fakeClassifier{err: errors.New("inference blew up")}
	store := newFakeStore()
	runner, videoPath := newTestRunner(t, sampler, classifier, store, &recordingSink{})

	_, err := runner.Run(context.Background(), "run1", videoPath, "c")
	var classificationErr *ClassificationError
	if !errors.As(err, &classificationErr) {
		t.Fatalf("error = %v, want ClassificationError", err)
	}
	if len(store.replaced) != 0 {
		t.Error("failed run must not touch the catalog")
	}
}

func TestRunAllFramesCorrupt(t *testing.T) {
	sampler := &fakeSampler{frames: 2, duration: 2.0}
	classifier := &fakeClassifier{
		tags: map[string]scenes.TagSet{},
		skip: map[string]bool{"frame_000001.png": true, "frame_000002.png": true},
	}
	runner, videoPath := newTestRunner(t, sampler, classifier, newFakeStore(), nil)

	_, err := runner.Run(context.Background(), "run1", videoPath, "c")
	var segmentationErr *SegmentationError
	if !errors.As(err, &segmentationErr) {
		t.Fatalf("error = %v, want SegmentationError", err)
	}
}

func TestRunCorruptFrameLeavesGap(t *testing.T) {
	tags := map[string]scenes.TagSet{}
	for i := 1; i <= 4; i++ {
		name, set := frameTags(i, scenes.TagSet{"a": 0.9})
		tags[name] = set
	}
	sampler := &fakeSampler{frames: 4, duration: 4.0}
	classifier := &fakeClassifier{tags: tags, skip: map[string]bool{"frame_000002.png": true}}
	store := newFakeStore()
	runner, videoPath := newTestRunner(t, sampler, classifier, store, nil)

	list, err := runner.Run(context.Background(), "run1", videoPath, "c")
	if err != nil {
		t.Fatalf("Run() error = %v, corrupt frame must not abort the run", err)
	}
	if len(list) == 0 {
		t.Fatal("no scenes produced")
	}
}

func TestRunPersistenceFailure(t *testing.T) {
	tags := map[string]scenes.TagSet{}
	for i := 1; i <= 2; i++ {
		name, set := frameTags(i, scenes.TagSet{"a": 0.9})
		tags[name] = set
	}
	sampler := &fakeSampler{frames: 2, duration: 2.0}
	store := newFakeStore()
	store.failNext = errors.New("disk full")
	runner, videoPath := newTestRunner(t, sampler, &fakeClassifier{tags: tags}, store, nil)

	_, err := runner.Run(context.Background(), "run1", videoPath, "c")
	var persistenceErr *PersistenceError
	if !errors.As(err, &persistenceErr) {
		t.Fatalf("error = %v, want PersistenceError", err)
	}
	// The artifact must not be promoted when the catalog write failed.
	if _, err := os.Stat(filepath.Join(filepath.Dir(videoPath), "sample_cenas.json")); !os.IsNotExist(err) {
		t.Error("artifact exists despite catalog failure")
	}
}

func TestRunProgressMonotonic(t *testing.T) {
	tags := map[string]scenes.TagSet{}
	for i := 1; i <= 6; i++ {
		name, set := frameTags(i, scenes.TagSet{"a": 0.9})
		tags[name] = set
	}
	sampler := &fakeSampler{frames: 6, duration: 6.0}
	sink := &recordingSink{}
	runner, videoPath := newTestRunner(t, sampler, &fakeClassifier{tags: tags}, newFakeStore(), sink)

	if _, err := runner.Run(context.Background(), "run1", videoPath, "c"); err != nil {
		t.Fatal(err)
	}
	prev := -1
	for _, ev := range sink.events {
		if ev.Progress < prev {
			t.Fatalf("progress went backwards: %+v", sink.events)
		}
		prev = ev.Progress
	}
}
