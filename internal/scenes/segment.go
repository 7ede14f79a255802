package scenes

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// TagSet maps a tag name to the classifier's confidence score for one frame.
type TagSet map[string]float64

// Names returns the set of tag names as a map usable for set operations.
func (t TagSet) Names() map[string]struct{} {
	names := make(map[string]struct{}, len(t))
	for name := range t {
		names[name] = struct{}{}
	}
	return names
}

// Jaccard computes |intersection| / |union| over the tag-name sets of two
// frames. Two empty sets are considered identical (1.0).
func Jaccard(a, b TagSet) float64 {
	union := len(a)
	intersection := 0
	for name := range b {
		if _, ok := a[name]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

var frameNumberPattern = regexp.MustCompile(`(\d+)`)

// frameIndex parses the numeric sequence suffix embedded in a frame filename.
// Frames without a number sort first, by name.
func frameIndex(name string) (int, bool) {
	match := frameNumberPattern.FindString(name)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// OrderFrames returns the frame names sorted by their embedded sequence
// number. Batches may finish out of order under concurrent tagging, so the
// embedded index, never arrival order, is authoritative.
func OrderFrames(tags map[string]TagSet) []string {
	ordered := make([]string, 0, len(tags))
	for name := range tags {
		ordered = append(ordered, name)
	}
	sort.Slice(ordered, func(i, j int) bool {
		ni, iok := frameIndex(ordered[i])
		nj, jok := frameIndex(ordered[j])
		if iok != jok {
			return !iok
		}
		if ni != nj {
			return ni < nj
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}

// DetectBoundaries walks adjacent frame pairs in sequence order and emits a
// boundary at (i+1)/fps whenever the Jaccard similarity of their tag sets
// drops below threshold. The boundary list always starts at 0.0. Returns the
// boundaries and the frame names in the order they were compared.
func DetectBoundaries(tags map[string]TagSet, fps, threshold float64) ([]float64, []string, error) {
	if len(tags) == 0 {
		return nil, nil, fmt.Errorf("no tagged frames to segment")
	}
	if fps <= 0 {
		return nil, nil, fmt.Errorf("frame rate must be positive, got %v", fps)
	}

	ordered := OrderFrames(tags)
	boundaries := []float64{0.0}
	for i := 0; i < len(ordered)-1; i++ {
		similarity := Jaccard(tags[ordered[i]], tags[ordered[i+1]])
		if similarity < threshold {
			boundaries = append(boundaries, float64(i+1)/fps)
		}
	}
	return boundaries, ordered, nil
}
