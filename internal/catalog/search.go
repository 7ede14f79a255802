package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// SearchRequest filters scenes by tags and duration. Include tags must all
// be present on a scene; exclude tags must all be absent.
type SearchRequest struct {
	IncludeTags []string `json:"include_tags"`
	ExcludeTags []string `json:"exclude_tags"`
	MinDuration float64  `json:"min_duration"`
	MaxDuration float64  `json:"max_duration"`
	Page        int      `json:"page"`
	Limit       int      `json:"limit"`
}

// SceneMatch is one scene that satisfied the search criteria.
type SceneMatch struct {
	SceneID   int64   `json:"scene_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// VideoMatch groups a video's matching scenes for navigation.
type VideoMatch struct {
	VideoID        int64        `json:"video_id"`
	VideoName      string       `json:"video_name"`
	FilePath       string       `json:"file_path"`
	MatchingScenes []SceneMatch `json:"matching_scenes"`
}

// Search returns videos containing scenes that match the request, ordered by
// how many scenes matched, paged. Matching scenes within a video are sorted
// by start time.
func (s *Store) Search(req SearchRequest) ([]VideoMatch, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 24
	}

	conditions := []string{"1=1"}
	var params []interface{}

	if req.MinDuration > 0 {
		conditions = append(conditions, "sc.duration >= ?")
		params = append(params, req.MinDuration)
	}
	if req.MaxDuration > 0 {
		conditions = append(conditions, "sc.duration <= ?")
		params = append(params, req.MaxDuration)
	}
	for _, tag := range req.ExcludeTags {
		conditions = append(conditions,
			`sc.scene_id NOT IN (
				SELECT st.scene_id FROM scene_tags st
				JOIN tags t ON st.tag_id = t.tag_id
				WHERE t.tag_name = ?)`)
		params = append(params, tag)
	}

	from := "FROM scenes sc"
	having := ""
	if len(req.IncludeTags) > 0 {
		from += " JOIN scene_tags st ON sc.scene_id = st.scene_id JOIN tags t ON st.tag_id = t.tag_id"
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(req.IncludeTags)), ", ")
		conditions = append(conditions, fmt.Sprintf("t.tag_name IN (%s)", placeholders))
		for _, tag := range req.IncludeTags {
			params = append(params, tag)
		}
		having = "GROUP BY sc.scene_id HAVING COUNT(DISTINCT t.tag_name) = ?"
		params = append(params, len(req.IncludeTags))
	}

	query := fmt.Sprintf(`
		SELECT v.video_id, v.video_name, COALESCE(v.file_path, ''),
		       s.scene_id, s.start_time, s.end_time
		FROM videos v
		JOIN scenes s ON v.video_id = s.video_id
		WHERE s.scene_id IN (SELECT sc.scene_id %s WHERE %s %s)
		ORDER BY v.video_id, s.start_time`,
		from, strings.Join(conditions, " AND "), having)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("search scenes: %w", err)
	}
	defer rows.Close()

	byVideo := map[int64]*VideoMatch{}
	for rows.Next() {
		var (
			videoID    int64
			name, path string
			sceneID    int64
			start, end float64
		)
		if err := rows.Scan(&videoID, &name, &path, &sceneID, &start, &end); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		match, ok := byVideo[videoID]
		if !ok {
			match = &VideoMatch{VideoID: videoID, VideoName: name, FilePath: path}
			byVideo[videoID] = match
		}
		match.MatchingScenes = append(match.MatchingScenes, SceneMatch{
			SceneID: sceneID, StartTime: start, EndTime: end,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	matches := make([]VideoMatch, 0, len(byVideo))
	for _, m := range byVideo {
		matches = append(matches, *m)
	}
	// Videos with more matching scenes first; name breaks ties for stable
	// paging.
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i].MatchingScenes) != len(matches[j].MatchingScenes) {
			return len(matches[i].MatchingScenes) > len(matches[j].MatchingScenes)
		}
		return matches[i].VideoName < matches[j].VideoName
	})

	offset := (req.Page - 1) * req.Limit
	if offset >= len(matches) {
		return []VideoMatch{}, nil
	}
	end := offset + req.Limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}
