package pipeline

import "fmt"

// ExtractionError means the frame sampler failed or produced zero frames.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("frame extraction for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ClassificationError means a batched inference call failed. Individual
// corrupt frames are recovered inside the classifier and never surface here.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("frame classification: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// SegmentationError means the tag data reaching the segmenter was empty or
// malformed.
type SegmentationError struct {
	Err error
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("scene segmentation: %v", e.Err)
}

func (e *SegmentationError) Unwrap() error { return e.Err }

// PersistenceError means writing the scene list, to the catalog store or to
// the artifact file, failed.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("scene persistence: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
