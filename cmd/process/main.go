package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"

	"scenecatalog/internal/catalog"
	"scenecatalog/internal/pipeline"
)

func main() {
	app := &cli.Command{
		Name:  "scenecatalog-process",
		Usage: "Run scene detection for every video under a category-structured directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "video-dir",
				Aliases: []string{"i"},
				Usage:   "Root directory containing category subfolders with videos",
				Value:   "videos",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the catalog database",
				Value: "cenas_database.db",
			},
			&cli.FloatFlag{
				Name:    "frame-rate",
				Aliases: []string{"r"},
				Usage:   "Frame sampling rate in frames per second",
				Value:   1.0,
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "Scene similarity threshold in (0,1)",
				Value: 0.4,
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of frames per inference batch",
				Value: 4,
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Tagger model repository",
			},
			&cli.BoolFlag{
				Name:  "skip-existing",
				Usage: "Skip videos that already have a scene artifact",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			frameRate := cmd.Float("frame-rate")
			if frameRate <= 0 {
				return cli.Exit("frame-rate must be greater than zero", 2)
			}
			threshold := cmd.Float("threshold")
			if threshold <= 0 || threshold >= 1 {
				return cli.Exit("threshold must be in (0,1)", 2)
			}

			store, err := catalog.Open(cmd.String("db"))
			if err != nil {
				return err
			}
			defer store.Close()

			runner := pipeline.NewRunner(store, logSink{}, pipeline.Options{
				FrameRate:           frameRate,
				SimilarityThreshold: threshold,
				BatchSize:           int(cmd.Int("batch-size")),
				ModelRepo:           cmd.String("model"),
			})

			return processDirectory(ctx, runner, cmd.String("video-dir"), cmd.Bool("skip-existing"))
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// logSink prints pipeline progress to the process log.
type logSink struct{}

func (logSink) Send(runID string, ev pipeline.Event) {
	log.Printf("[%s] %s %d%% %s", runID, ev.Stage, ev.Progress, ev.Message)
}

func processDirectory(ctx context.Context, runner *pipeline.Runner, videoDir string, skipExisting bool) error {
	categories, err := os.ReadDir(videoDir)
	if err != nil {
		return fmt.Errorf("read video directory: %w", err)
	}

	var processed, failed int
	for _, categoryEntry := range categories {
		if !categoryEntry.IsDir() {
			continue
		}
		category := categoryEntry.Name()
		categoryDir := filepath.Join(videoDir, category)

		entries, err := os.ReadDir(categoryDir)
		if err != nil {
			return fmt.Errorf("read category %s: %w", category, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isVideoFile(entry.Name()) {
				continue
			}
			videoPath := filepath.Join(categoryDir, entry.Name())
			if skipExisting && artifactExists(videoPath) {
				log.Printf("Skipping %s (artifact exists)", videoPath)
				continue
			}

			log.Printf("Processing %s", videoPath)
			runID := fmt.Sprintf("%s/%s", category, entry.Name())
			if _, err := runner.Run(ctx, runID, videoPath, category); err != nil {
				log.Printf("Failed %s: %v", videoPath, err)
				failed++
				continue
			}
			processed++
		}
	}

	if processed == 0 && failed == 0 {
		return fmt.Errorf("no video files found in %s", videoDir)
	}
	log.Printf("Done: %d processed, %d failed", processed, failed)
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d videos failed", failed), 1)
	}
	return nil
}

func artifactExists(videoPath string) bool {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	artifact := filepath.Join(filepath.Dir(videoPath), base+"_cenas.json")
	_, err := os.Stat(artifact)
	return err == nil
}

func isVideoFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".mov", ".mkv", ".avi", ".m4v", ".webm", ".wmv", ".mpg":
		return true
	default:
		return false
	}
}
