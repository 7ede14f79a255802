package scenes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// TagScore is one ranked tag within a scene.
type TagScore struct {
	Name  string
	Score float64
}

// TagRanking is an ordered list of tags, descending by mean score. It
// marshals to a JSON object whose key order matches the ranking, because the
// persisted artifact stores tags as an object sorted by value.
type TagRanking []TagScore

func (r TagRanking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ts := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ts.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(ts.Score)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *TagRanking) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tag ranking: expected object, got %v", tok)
	}
	ranking := TagRanking{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("tag ranking: non-string key %v", keyTok)
		}
		var score float64
		if err := dec.Decode(&score); err != nil {
			return fmt.Errorf("tag ranking: score for %q: %w", name, err)
		}
		ranking = append(ranking, TagScore{Name: name, Score: score})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = ranking
	return nil
}

// Get returns the score for a tag name, or false when absent.
func (r TagRanking) Get(name string) (float64, bool) {
	for _, ts := range r {
		if ts.Name == name {
			return ts.Score, true
		}
	}
	return 0, false
}

// Scene is one detected scene with its aggregated tag ranking. The JSON
// field names match the on-disk catalog artifact.
type Scene struct {
	Number    int        `json:"cena_n"`
	StartTime float64    `json:"start_time"`
	EndTime   float64    `json:"end_time"`
	Duration  float64    `json:"duration"`
	Tags      TagRanking `json:"tags_principais"`
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// BuildScenes partitions the ordered frames into windows delimited by the
// boundaries, appends videoDuration as the closing boundary, and aggregates
// each window's per-tag scores into a mean-ranked scene. Frames missing from
// the tag map (a corrupt image skipped during classification) contribute no
// scores; they never contribute zeros.
func BuildScenes(boundaries []float64, ordered []string, tags map[string]TagSet, fps, videoDuration float64) []Scene {
	edges := make([]float64, len(boundaries), len(boundaries)+1)
	copy(edges, boundaries)
	edges = append(edges, videoDuration)

	result := make([]Scene, 0, len(edges)-1)
	for i := 0; i < len(edges)-1; i++ {
		start, end := edges[i], edges[i+1]
		startIdx := int(start * fps)
		endIdx := int(end * fps)
		if startIdx < 0 {
			startIdx = 0
		}
		if endIdx > len(ordered) {
			endIdx = len(ordered)
		}

		sums := map[string]float64{}
		counts := map[string]int{}
		for _, frame := range ordered[min(startIdx, len(ordered)):endIdx] {
			for tag, score := range tags[frame] {
				sums[tag] += score
				counts[tag]++
			}
		}

		ranking := make(TagRanking, 0, len(sums))
		for tag, sum := range sums {
			ranking = append(ranking, TagScore{Name: tag, Score: sum / float64(counts[tag])})
		}
		// Descending by mean; equal means ordered by name so repeated runs
		// produce identical artifacts.
		sort.SliceStable(ranking, func(a, b int) bool {
			if ranking[a].Score != ranking[b].Score {
				return ranking[a].Score > ranking[b].Score
			}
			return ranking[a].Name < ranking[b].Name
		})
		for j := range ranking {
			ranking[j].Score = round3(ranking[j].Score)
		}

		result = append(result, Scene{
			Number:    i + 1,
			StartTime: round3(start),
			EndTime:   round3(end),
			Duration:  round3(end - start),
			Tags:      ranking,
		})
	}
	return result
}
