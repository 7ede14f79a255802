package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"scenecatalog/internal/scenes"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sceneWith(number int, start, end float64, tags ...scenes.TagScore) scenes.Scene {
	return scenes.Scene{
		Number:    number,
		StartTime: start,
		EndTime:   end,
		Duration:  end - start,
		Tags:      scenes.TagRanking(tags),
	}
}

func TestUpsertVideoKeepsID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.UpsertVideo("clip", "nature", "videos/nature/clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	again, err := store.UpsertVideo("clip", "travel", "videos/travel/clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if id != again {
		t.Errorf("upsert changed video id: %d vs %d", id, again)
	}

	records, err := store.Videos()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("videos = %d, want 1", len(records))
	}
	if records[0].Category != "travel" || records[0].FilePath != "videos/travel/clip.mp4" {
		t.Errorf("upsert did not refresh metadata: %+v", records[0])
	}
}

func TestUpsertVideoNormalizesPathSeparators(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.UpsertVideo("clip", "c", `videos\c\clip.mp4`); err != nil {
		t.Fatal(err)
	}
	paths, err := store.FilePaths()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := paths["videos/c/clip.mp4"]; !ok {
		t.Errorf("stored paths = %v, want forward slashes", paths)
	}
}

func TestVideoIDByNameNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.VideoIDByName("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestReplaceScenesSupersedesOldRun(t *testing.T) {
	store := openTestStore(t)
	id, err := store.UpsertVideo("clip", "c", "videos/c/clip.mp4")
	if err != nil {
		t.Fatal(err)
	}

	first := []scenes.Scene{
		sceneWith(1, 0, 5, scenes.TagScore{Name: "outdoors", Score: 0.9}),
		sceneWith(2, 5, 8, scenes.TagScore{Name: "night", Score: 0.7}),
		sceneWith(3, 8, 10),
	}
	if err := store.ReplaceScenes(id, first); err != nil {
		t.Fatal(err)
	}
	if count, _ := store.SceneCount(id); count != 3 {
		t.Fatalf("scene count = %d, want 3", count)
	}

	second := []scenes.Scene{
		sceneWith(1, 0, 10, scenes.TagScore{Name: "outdoors", Score: 0.8}),
	}
	if err := store.ReplaceScenes(id, second); err != nil {
		t.Fatal(err)
	}
	if count, _ := store.SceneCount(id); count != 1 {
		t.Errorf("rerun did not replace scenes: count = %d, want 1", count)
	}

	// Old scene tags must not survive as search hits.
	matches, err := store.Search(SearchRequest{IncludeTags: []string{"night"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("superseded tag still searchable: %+v", matches)
	}
}

func TestDeleteVideosByPathCascades(t *testing.T) {
	store := openTestStore(t)
	id, err := store.UpsertVideo("clip", "c", "videos/c/clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceScenes(id, []scenes.Scene{
		sceneWith(1, 0, 5, scenes.TagScore{Name: "outdoors", Score: 0.9}),
	}); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.DeleteVideosByPath([]string{"videos/c/clip.mp4"})
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if count, _ := store.SceneCount(id); count != 0 {
		t.Errorf("scenes survived video delete: %d", count)
	}
	matches, err := store.Search(SearchRequest{IncludeTags: []string{"outdoors"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("scene tags survived video delete: %+v", matches)
	}
}

func seedSearchFixture(t *testing.T, store *Store) {
	t.Helper()
	beach, err := store.UpsertVideo("beach", "nature", "videos/nature/beach.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceScenes(beach, []scenes.Scene{
		sceneWith(1, 0, 10,
			scenes.TagScore{Name: "outdoors", Score: 0.9},
			scenes.TagScore{Name: "ocean", Score: 0.8}),
		sceneWith(2, 10, 12,
			scenes.TagScore{Name: "outdoors", Score: 0.7},
			scenes.TagScore{Name: "sunset", Score: 0.9}),
	}); err != nil {
		t.Fatal(err)
	}

	city, err := store.UpsertVideo("city", "urban", "videos/urban/city.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceScenes(city, []scenes.Scene{
		sceneWith(1, 0, 4,
			scenes.TagScore{Name: "outdoors", Score: 0.6},
			scenes.TagScore{Name: "night", Score: 0.9}),
	}); err != nil {
		t.Fatal(err)
	}
}

func TestSearchIncludeRequiresAllTags(t *testing.T) {
	store := openTestStore(t)
	seedSearchFixture(t, store)

	matches, err := store.Search(SearchRequest{IncludeTags: []string{"outdoors", "ocean"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].VideoName != "beach" {
		t.Fatalf("matches = %+v, want only beach", matches)
	}
	if len(matches[0].MatchingScenes) != 1 {
		t.Errorf("matching scenes = %d, want 1 (scene 2 lacks ocean)", len(matches[0].MatchingScenes))
	}
}

func TestSearchExcludeDropsScenes(t *testing.T) {
	store := openTestStore(t)
	seedSearchFixture(t, store)

	matches, err := store.Search(SearchRequest{
		IncludeTags: []string{"outdoors"},
		ExcludeTags: []string{"night"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].VideoName != "beach" {
		t.Fatalf("matches = %+v, want only beach", matches)
	}
	if len(matches[0].MatchingScenes) != 2 {
		t.Errorf("matching scenes = %d, want both beach scenes", len(matches[0].MatchingScenes))
	}
}

func TestSearchDurationBounds(t *testing.T) {
	store := openTestStore(t)
	seedSearchFixture(t, store)

	matches, err := store.Search(SearchRequest{
		IncludeTags: []string{"outdoors"},
		MinDuration: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || len(matches[0].MatchingScenes) != 1 {
		t.Fatalf("matches = %+v, want only the 10s beach scene", matches)
	}
	if matches[0].MatchingScenes[0].EndTime != 10 {
		t.Errorf("matched scene ends at %v, want 10", matches[0].MatchingScenes[0].EndTime)
	}
}

func TestSearchOrdersByMatchCountAndPages(t *testing.T) {
	store := openTestStore(t)
	seedSearchFixture(t, store)

	matches, err := store.Search(SearchRequest{IncludeTags: []string{"outdoors"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].VideoName != "beach" {
		t.Errorf("first match = %s, want beach (more matching scenes)", matches[0].VideoName)
	}

	page2, err := store.Search(SearchRequest{IncludeTags: []string{"outdoors"}, Page: 2, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page2) != 1 || page2[0].VideoName != "city" {
		t.Errorf("page 2 = %+v, want city", page2)
	}

	page3, err := store.Search(SearchRequest{IncludeTags: []string{"outdoors"}, Page: 3, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page3) != 0 {
		t.Errorf("page past the end = %+v, want empty", page3)
	}
}
