package scenes

import (
	"fmt"
	"math"
	"testing"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b TagSet
		want float64
	}{
		{
			name: "identical sets",
			a:    TagSet{"a": 0.9, "b": 0.8},
			b:    TagSet{"a": 0.5, "b": 0.1},
			want: 1.0,
		},
		{
			name: "disjoint sets",
			a:    TagSet{"a": 0.9},
			b:    TagSet{"c": 0.9},
			want: 0.0,
		},
		{
			name: "both empty",
			a:    TagSet{},
			b:    TagSet{},
			want: 1.0,
		},
		{
			name: "one empty",
			a:    TagSet{"a": 0.9},
			b:    TagSet{},
			want: 0.0,
		},
		{
			name: "partial overlap",
			a:    TagSet{"a": 0.9, "b": 0.8, "c": 0.7},
			b:    TagSet{"b": 0.8, "c": 0.7, "d": 0.6},
			want: 0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}
			// Scores never influence similarity, only tag names do.
			if got := Jaccard(tt.b, tt.a); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard() not symmetric: %v vs %v", got, tt.want)
			}
		})
	}
}

func TestOrderFramesByEmbeddedIndex(t *testing.T) {
	// Map iteration order must never leak into the result; the embedded
	// sequence number is authoritative even when batches land out of order.
	tags := map[string]TagSet{
		"frame_000010.png": {},
		"frame_000002.png": {},
		"frame_000001.png": {},
		"frame_000100.png": {},
	}
	want := []string{"frame_000001.png", "frame_000002.png", "frame_000010.png", "frame_000100.png"}
	for i := 0; i < 20; i++ {
		got := OrderFrames(tags)
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("OrderFrames()[%d] = %s, want %s", j, got[j], want[j])
			}
		}
	}
}

func TestDetectBoundaries(t *testing.T) {
	tags := map[string]TagSet{
		"frame_000001.png": {"a": 0.9, "b": 0.8},
		"frame_000002.png": {"a": 0.9, "b": 0.8},
		"frame_000003.png": {"c": 0.9},
	}
	boundaries, ordered, err := DetectBoundaries(tags, 1.0, 0.4)
	if err != nil {
		t.Fatalf("DetectBoundaries() error = %v", err)
	}
	if len(ordered) != 3 {
		t.Fatalf("ordered frames = %d, want 3", len(ordered))
	}
	want := []float64{0.0, 2.0}
	if len(boundaries) != len(want) {
		t.Fatalf("boundaries = %v, want %v", boundaries, want)
	}
	for i := range want {
		if boundaries[i] != want[i] {
			t.Errorf("boundaries[%d] = %v, want %v", i, boundaries[i], want[i])
		}
	}
}

func TestDetectBoundariesIdenticalFramesNeverSplit(t *testing.T) {
	tags := map[string]TagSet{}
	for i := 1; i <= 10; i++ {
		tags[frameName(i)] = TagSet{"sky": 0.9, "tree": 0.8}
	}
	for _, threshold := range []float64{0.01, 0.4, 0.99} {
		boundaries, _, err := DetectBoundaries(tags, 1.0, threshold)
		if err != nil {
			t.Fatalf("threshold %v: %v", threshold, err)
		}
		if len(boundaries) != 1 || boundaries[0] != 0.0 {
			t.Errorf("threshold %v: boundaries = %v, want [0.0]", threshold, boundaries)
		}
	}
}

func TestDetectBoundariesDisjointFramesAlwaysSplit(t *testing.T) {
	tags := map[string]TagSet{
		frameName(1): {"a": 0.9},
		frameName(2): {"b": 0.9},
	}
	for _, threshold := range []float64{0.01, 0.5, 0.99} {
		boundaries, _, err := DetectBoundaries(tags, 1.0, threshold)
		if err != nil {
			t.Fatalf("threshold %v: %v", threshold, err)
		}
		if len(boundaries) != 2 {
			t.Fatalf("threshold %v: boundaries = %v, want boundary at 1.0", threshold, boundaries)
		}
		if boundaries[1] != 1.0 {
			t.Errorf("threshold %v: boundary = %v, want 1.0", threshold, boundaries[1])
		}
	}
}

func TestDetectBoundariesNonDecreasingStartsAtZero(t *testing.T) {
	tags := map[string]TagSet{
		frameName(1): {"a": 0.9},
		frameName(2): {"b": 0.9},
		frameName(3): {"b": 0.9},
		frameName(4): {"c": 0.9},
		frameName(5): {"d": 0.9},
	}
	boundaries, _, err := DetectBoundaries(tags, 2.0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if boundaries[0] != 0.0 {
		t.Fatalf("first boundary = %v, want 0.0", boundaries[0])
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] < boundaries[i-1] {
			t.Fatalf("boundaries not non-decreasing: %v", boundaries)
		}
	}
}

func TestDetectBoundariesEmptyInput(t *testing.T) {
	if _, _, err := DetectBoundaries(map[string]TagSet{}, 1.0, 0.4); err == nil {
		t.Error("DetectBoundaries() with no frames should fail")
	}
	if _, _, err := DetectBoundaries(map[string]TagSet{"frame_000001.png": {}}, 0, 0.4); err == nil {
		t.Error("DetectBoundaries() with zero fps should fail")
	}
}

// A frame skipped during classification (corrupt image) leaves a gap in the
// map; segmentation runs over the frames that are present.
func TestDetectBoundariesTolerateMissingFrame(t *testing.T) {
	tags := map[string]TagSet{
		frameName(1): {"a": 0.9},
		// frame 2 corrupt, absent
		frameName(3): {"a": 0.9},
		frameName(4): {"b": 0.9},
	}
	boundaries, ordered, err := DetectBoundaries(tags, 1.0, 0.4)
	if err != nil {
		t.Fatalf("DetectBoundaries() error = %v", err)
	}
	if len(ordered) != 3 {
		t.Fatalf("ordered = %v, want 3 frames", ordered)
	}
	if len(boundaries) != 2 {
		t.Fatalf("boundaries = %v, want one split", boundaries)
	}
}

func frameName(i int) string {
	return fmt.Sprintf("frame_%06d.png", i)
}
