package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Config controls frame sampling.
type Config struct {
	FrameRate float64 `json:"frame_rate"`
	FrameSize [2]int  `json:"frame_size"`
}

// FramePattern is the sequential naming scheme for sampled frames. The
// six-digit index is the frame's identity downstream.
const FramePattern = "frame_%06d.png"

// ExtractFrames samples inputPath at cfg.FrameRate into framesDir and
// returns the number of frames written. Zero frames is an error: a video
// that produced nothing cannot be segmented. Cleanup of framesDir belongs to
// the caller.
func ExtractFrames(inputPath, framesDir string, cfg Config) (int, error) {
	if cfg.FrameRate <= 0 {
		return 0, fmt.Errorf("frame rate must be positive, got %v", cfg.FrameRate)
	}
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return 0, fmt.Errorf("create frames dir: %w", err)
	}

	fpsStr := strconv.FormatFloat(cfg.FrameRate, 'f', -1, 64)
	// Preserve aspect ratio: scale to fit inside a square target, then pad to square
	target := cfg.FrameSize[0]
	if target <= 0 {
		target = 448
	}
	scaleStr := fmt.Sprintf("%d:%d", target, target)
	padStr := fmt.Sprintf("%d:%d:(%d-iw)/2:(%d-ih)/2", target, target, target, target)

	outputPattern := filepath.Join(framesDir, FramePattern)

	err := ffmpeg.
		Input(inputPath).
		// Sample at cfg.FrameRate fps
		Filter("fps", ffmpeg.Args{fpsStr}).
		// Resize preserving aspect, then pad to square
		Filter("scale", ffmpeg.Args{scaleStr}, ffmpeg.KwArgs{"force_original_aspect_ratio": "decrease"}).
		Filter("pad", ffmpeg.Args{padStr}, ffmpeg.KwArgs{"color": "white"}).
		Output(outputPattern).
		OverWriteOutput().
		Run()
	if err != nil {
		return 0, fmt.Errorf("ffmpeg frame extraction: %w", err)
	}

	count, err := CountFrames(framesDir)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("no frames extracted from %s", inputPath)
	}
	return count, nil
}

// CountFrames counts the sampled frame images present in dir.
func CountFrames(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, ".png") {
			count++
		}
	}
	return count, nil
}

// ListFrames returns the paths of the sampled frames in dir, in pattern
// order.
func ListFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}
	frames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, ".png") {
			frames = append(frames, filepath.Join(dir, name))
		}
	}
	return frames, nil
}

// Duration probes inputPath and returns its duration in seconds.
func Duration(inputPath string) (float64, error) {
	out, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", inputPath, err)
	}
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probe.Format.Duration, err)
	}
	return duration, nil
}
