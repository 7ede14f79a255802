// Package catalog is the durable store of videos, scenes, and tags. The
// pipeline depends only on upsert/replace/lookup; browsing and search sit on
// the same store for the daemon.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"scenecatalog/internal/scenes"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	video_id INTEGER PRIMARY KEY,
	video_name TEXT NOT NULL UNIQUE,
	category TEXT,
	file_path TEXT
);
CREATE TABLE IF NOT EXISTS scenes (
	scene_id INTEGER PRIMARY KEY,
	video_id INTEGER NOT NULL,
	scene_number INTEGER NOT NULL,
	start_time REAL NOT NULL,
	end_time REAL NOT NULL,
	duration REAL NOT NULL,
	clip_path TEXT,
	FOREIGN KEY (video_id) REFERENCES videos(video_id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS tags (
	tag_id INTEGER PRIMARY KEY,
	tag_name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS scene_tags (
	scene_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY (scene_id, tag_id),
	FOREIGN KEY (scene_id) REFERENCES scenes(scene_id) ON DELETE CASCADE,
	FOREIGN KEY (tag_id) REFERENCES tags(tag_id)
);
`

// Store wraps the sqlite catalog database.
type Store struct {
	db *sql.DB
}

// Open connects to the sqlite database at path, creating the schema when
// missing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertVideo ensures a video row exists for name and returns its id. An
// existing row keeps its id; category and path are refreshed.
func (s *Store) UpsertVideo(name, category, filePath string) (int64, error) {
	filePath = strings.ReplaceAll(filePath, "\\", "/")
	_, err := s.db.Exec(
		`INSERT INTO videos (video_name, category, file_path) VALUES (?, ?, ?)
		 ON CONFLICT(video_name) DO UPDATE SET category = excluded.category, file_path = excluded.file_path`,
		name, category, filePath,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert video %q: %w", name, err)
	}
	return s.VideoIDByName(name)
}

// VideoIDByName resolves a video's id by its unique name.
func (s *Store) VideoIDByName(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT video_id FROM videos WHERE video_name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("video %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup video %q: %w", name, err)
	}
	return id, nil
}

// ReplaceScenes atomically replaces every scene of a video with the new
// list. Re-running the pipeline supersedes, never merges, old results; a
// reader never observes a half-updated scene list.
func (s *Store) ReplaceScenes(videoID int64, list []scenes.Scene) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin scene replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM scenes WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("clear old scenes: %w", err)
	}

	insertScene, err := tx.Prepare(
		`INSERT INTO scenes (video_id, scene_number, start_time, end_time, duration) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare scene insert: %w", err)
	}
	defer insertScene.Close()

	for _, scene := range list {
		res, err := insertScene.Exec(videoID, scene.Number, scene.StartTime, scene.EndTime, scene.Duration)
		if err != nil {
			return fmt.Errorf("insert scene %d: %w", scene.Number, err)
		}
		sceneID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("scene %d id: %w", scene.Number, err)
		}
		for _, ts := range scene.Tags {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (tag_name) VALUES (?)`, ts.Name); err != nil {
				return fmt.Errorf("insert tag %q: %w", ts.Name, err)
			}
			var tagID int64
			if err := tx.QueryRow(`SELECT tag_id FROM tags WHERE tag_name = ?`, ts.Name).Scan(&tagID); err != nil {
				return fmt.Errorf("lookup tag %q: %w", ts.Name, err)
			}
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO scene_tags (scene_id, tag_id, score) VALUES (?, ?, ?)`,
				sceneID, tagID, ts.Score,
			); err != nil {
				return fmt.Errorf("insert scene tag %q: %w", ts.Name, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scene replace: %w", err)
	}
	return nil
}

// VideoRecord is a catalog row for listing.
type VideoRecord struct {
	VideoID    int64  `json:"video_id"`
	VideoName  string `json:"video_name"`
	Category   string `json:"category"`
	FilePath   string `json:"file_path"`
	SceneCount int    `json:"scene_count"`
}

// Videos lists every cataloged video with its scene count.
func (s *Store) Videos() ([]VideoRecord, error) {
	rows, err := s.db.Query(`
		SELECT v.video_id, v.video_name, COALESCE(v.category, ''), COALESCE(v.file_path, ''), COUNT(s.scene_id)
		FROM videos v
		LEFT JOIN scenes s ON s.video_id = v.video_id
		GROUP BY v.video_id
		ORDER BY v.video_name`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var records []VideoRecord
	for rows.Next() {
		var rec VideoRecord
		if err := rows.Scan(&rec.VideoID, &rec.VideoName, &rec.Category, &rec.FilePath, &rec.SceneCount); err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SceneCount returns how many scenes a video currently has.
func (s *Store) SceneCount(videoID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM scenes WHERE video_id = ?`, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count scenes: %w", err)
	}
	return count, nil
}

// FilePaths returns the set of file paths recorded in the catalog.
func (s *Store) FilePaths() (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT COALESCE(file_path, '') FROM videos`)
	if err != nil {
		return nil, fmt.Errorf("list file paths: %w", err)
	}
	defer rows.Close()

	paths := map[string]struct{}{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan file path: %w", err)
		}
		if p != "" {
			paths[p] = struct{}{}
		}
	}
	return paths, rows.Err()
}

// DeleteVideosByPath removes video rows by file path; scenes and scene tags
// cascade. Returns how many rows were deleted.
func (s *Store) DeleteVideosByPath(paths []string) (int64, error) {
	var deleted int64
	for _, path := range paths {
		res, err := s.db.Exec(`DELETE FROM videos WHERE file_path = ?`, path)
		if err != nil {
			return deleted, fmt.Errorf("delete video %q: %w", path, err)
		}
		n, _ := res.RowsAffected()
		deleted += n
	}
	return deleted, nil
}
