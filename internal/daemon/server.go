package daemon

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"scenecatalog/internal/catalog"
	"scenecatalog/internal/pipeline"
)

// Version reported by the health endpoint.
const Version = "0.1.0"

// Server stores in-memory run state and exposes HTTP handlers over the
// catalog store.
type Server struct {
	mu          sync.RWMutex
	config      Config
	videos      map[string]*Video
	videoByPath map[string]string
	jobs        map[string]*Job
	store       *catalog.Store
	hub         *ProgressHub
	videosRoot  string
	tempRoot    string
}

// NewServer opens the catalog store and builds the server. Environment
// overrides: DB_PATH, VIDEOS_ROOT, TEMP_ROOT, MODEL_REPO.
func NewServer() (*Server, error) {
	cfg := Config{
		FrameRate:           1.0,
		SimilarityThreshold: 0.4,
		BatchSize:           4,
		GeneralThreshold:    0.35,
		CharacterThreshold:  0.85,
		ModelRepo:           "SmilingWolf/wd-swinv2-tagger-v3",
	}
	if repo := os.Getenv("MODEL_REPO"); repo != "" {
		cfg.ModelRepo = repo
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "cenas_database.db"
	}
	videosRoot := os.Getenv("VIDEOS_ROOT")
	if videosRoot == "" {
		videosRoot = "videos"
	}
	tempRoot := os.Getenv("TEMP_ROOT")
	if tempRoot == "" {
		tempRoot = pipeline.DefaultTempRoot
	}

	store, err := catalog.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	return &Server{
		config:      cfg,
		videos:      make(map[string]*Video),
		videoByPath: make(map[string]string),
		jobs:        make(map[string]*Job),
		store:       store,
		hub:         NewProgressHub(),
		videosRoot:  videosRoot,
		tempRoot:    tempRoot,
	}, nil
}

// Routes returns the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Logging
	r.Use(logRequestMiddleware)

	// CORS to allow local client
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger docs
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Config and health
	r.Get("/health", s.handleHealth)
	r.MethodFunc(http.MethodGet, "/config", s.handleConfig)
	r.MethodFunc(http.MethodPut, "/config", s.handleConfig)

	// Folders
	r.MethodFunc(http.MethodGet, "/folders", s.handleFolders)

	// Videos
	r.MethodFunc(http.MethodGet, "/videos", s.handleVideos)
	r.MethodFunc(http.MethodPost, "/videos", s.handleVideos)
	r.Route("/videos/{videoID}", func(r chi.Router) {
		r.MethodFunc(http.MethodGet, "/", s.handleGetVideo)
		r.MethodFunc(http.MethodPost, "/process", s.handleProcess)
		r.MethodFunc(http.MethodGet, "/file", s.handleVideoFile)
	})

	// Jobs and progress
	r.MethodFunc(http.MethodGet, "/jobs", s.handleJobs)
	r.MethodFunc(http.MethodGet, "/ws/progress/{jobID}", s.hub.HandleSubscribe)

	// Search
	r.MethodFunc(http.MethodPost, "/search", s.handleSearch)

	// Management
	r.MethodFunc(http.MethodGet, "/management/status", s.handleSyncStatus)
	r.MethodFunc(http.MethodPost, "/management/cleanup", s.handleCleanup)
	r.MethodFunc(http.MethodPost, "/management/scan_new", s.handleScanNew)

	return r
}

// Close releases the catalog store.
func (s *Server) Close() error {
	return s.store.Close()
}
