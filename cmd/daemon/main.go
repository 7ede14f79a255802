// @title Scene Catalog API
// @version 1.0
// @description API for video scene detection, tagging, and tag-based scene search.
// @host localhost:8080
// @BasePath /
package main

import (
	"log"
	"net/http"

	"scenecatalog/internal/daemon"
	_ "scenecatalog/internal/docs"
)

func main() {
	server, err := daemon.NewServer()
	if err != nil {
		log.Fatalf("server setup failed: %v", err)
	}
	defer server.Close()

	addr := ":8080"
	log.Printf("Starting server on %s\n", addr)
	if err := http.ListenAndServe(addr, server.Routes()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
