// Package tagger wraps the pretrained multi-label image classifier behind a
// process-wide, lazily-initialized predictor. Loading the model is the only
// place the pipeline performs network I/O and heavy memory allocation, so a
// single instance is shared by every concurrent run.
package tagger

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"scenecatalog/internal/scenes"
)

// Default model and thresholds.
const (
	DefaultModelRepo          = "SmilingWolf/wd-swinv2-tagger-v3"
	DefaultGeneralThreshold   = 0.35
	DefaultCharacterThreshold = 0.85
	DefaultBatchSize          = 4
)

const (
	labelsFile = "selected_tags.csv"
	modelFile  = "model.onnx"
)

// Predictor runs batched inference with the tagger model. The zero value is
// unusable; call Shared or NewPredictor. All methods are safe for concurrent
// use: the ONNX session is not assumed reentrant, so calls are serialized by
// an internal mutex.
type Predictor struct {
	mu         sync.Mutex
	hub        *hubClient
	session    *ort.DynamicAdvancedSession
	labels     *labelIndex
	targetSize int
	loadedRepo string
}

var (
	sharedOnce sync.Once
	shared     *Predictor
)

// Shared returns the process-wide predictor instance.
func Shared() *Predictor {
	sharedOnce.Do(func() {
		shared = NewPredictor(defaultCacheDir())
	})
	return shared
}

// NewPredictor creates an unloaded predictor caching model files under
// cacheDir.
func NewPredictor(cacheDir string) *Predictor {
	return &Predictor{hub: newHubClient(os.Getenv("MODEL_HUB_URL"), cacheDir)}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "scenecatalog", "models")
}

// Load fetches the model repository's label csv and ONNX graph, then builds
// the inference session. Loading the same repo again is a no-op; loading a
// different repo replaces the session.
func (p *Predictor) Load(ctx context.Context, modelRepo string) error {
	if modelRepo == "" {
		modelRepo = DefaultModelRepo
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadedRepo == modelRepo {
		return nil
	}

	csvPath, err := p.hub.fetch(ctx, modelRepo, labelsFile)
	if err != nil {
		return fmt.Errorf("fetch labels: %w", err)
	}
	modelPath, err := p.hub.fetch(ctx, modelRepo, modelFile)
	if err != nil {
		return fmt.Errorf("fetch model: %w", err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open labels: %w", err)
	}
	labels, err := parseLabels(f)
	f.Close()
	if err != nil {
		return err
	}

	if libPath := os.Getenv("ONNXRUNTIME_LIB"); libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return fmt.Errorf("inspect model: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("model has no inputs or outputs")
	}
	// Model input is NHWC; dimension 1 is the square target size.
	dims := inputs[0].Dimensions
	if len(dims) < 3 || dims[1] <= 0 {
		return fmt.Errorf("unexpected model input shape %v", dims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("create session options: %w", err)
	}
	defer opts.Destroy()
	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return fmt.Errorf("set graph optimization: %w", err)
	}
	if err := opts.SetIntraOpNumThreads(0); err != nil {
		log.Printf("tagger: set thread count: %v", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return fmt.Errorf("create inference session: %w", err)
	}

	if p.session != nil {
		p.session.Destroy()
	}
	p.session = session
	p.labels = labels
	p.targetSize = int(dims[1])
	p.loadedRepo = modelRepo
	log.Printf("tagger: loaded %s (%d labels, input %dx%d)", modelRepo, len(labels.names), p.targetSize, p.targetSize)
	return nil
}

// PredictBatch runs one batched inference over the given frame image paths
// and returns a TagSet per frame, keyed by the frame's base filename. Only
// labels strictly above their category threshold are kept. A frame that
// fails to decode is logged and skipped, so the result may hold fewer
// entries than paths; keying by filename keeps the gap visible downstream.
func (p *Predictor) PredictBatch(paths []string, generalThreshold, characterThreshold float64) (map[string]scenes.TagSet, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil, fmt.Errorf("model not loaded")
	}

	kept := make([]string, 0, len(paths))
	data := make([]float32, 0, len(paths)*p.targetSize*p.targetSize*3)
	for _, path := range paths {
		pixels, err := prepareImage(path, p.targetSize)
		if err != nil {
			log.Printf("tagger: skipping frame %s: %v", filepath.Base(path), err)
			continue
		}
		kept = append(kept, filepath.Base(path))
		data = append(data, pixels...)
	}
	if len(kept) == 0 {
		return map[string]scenes.TagSet{}, nil
	}

	shape := ort.NewShape(int64(len(kept)), int64(p.targetSize), int64(p.targetSize), 3)
	input, err := ort.NewTensor(shape, data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := p.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	output, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	defer output.Destroy()

	preds := output.GetData()
	perImage := len(p.labels.names)
	if len(preds) < len(kept)*perImage {
		return nil, fmt.Errorf("inference returned %d scores, want %d", len(preds), len(kept)*perImage)
	}

	results := make(map[string]scenes.TagSet, len(kept))
	for i, name := range kept {
		scores := preds[i*perImage : (i+1)*perImage]
		tags := scenes.TagSet{}
		for _, pos := range p.labels.general {
			if score := float64(scores[pos]); score > generalThreshold {
				tags[p.labels.names[pos]] = score
			}
		}
		for _, pos := range p.labels.character {
			if score := float64(scores[pos]); score > characterThreshold {
				tags[p.labels.names[pos]] = score
			}
		}
		results[name] = tags
	}
	return results, nil
}

// Close releases the inference session.
func (p *Predictor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		p.session.Destroy()
		p.session = nil
		p.loadedRepo = ""
	}
}
