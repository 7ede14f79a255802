package daemon

import (
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"scenecatalog/internal/pipeline"
)

// ProgressHub forwards pipeline events to at most one websocket subscriber
// per job. Events for jobs with no subscriber are dropped silently, which is
// the contract the pipeline expects from its sink.
type ProgressHub struct {
	mu       sync.Mutex
	conns    map[string]*websocket.Conn
	upgrader websocket.Upgrader
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		conns: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			// The daemon serves local browser clients; CORS is handled at
			// the router level.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleSubscribe upgrades the request and attaches the connection to the
// job's progress channel, replacing any previous subscriber.
func (h *ProgressHub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job id is required")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("progress: upgrade for job %s: %v", jobID, err)
		return
	}

	h.mu.Lock()
	if prev, ok := h.conns[jobID]; ok {
		prev.Close()
	}
	h.conns[jobID] = conn
	h.mu.Unlock()

	// Drain client frames so close handshakes are noticed; the hub only
	// pushes.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.detach(jobID, conn)
				return
			}
		}
	}()
}

func (h *ProgressHub) detach(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	if h.conns[jobID] == conn {
		delete(h.conns, jobID)
	}
	h.mu.Unlock()
	conn.Close()
}

// Send implements pipeline.Sink.
func (h *ProgressHub) Send(runID string, ev pipeline.Event) {
	h.mu.Lock()
	conn, ok := h.conns[runID]
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := conn.WriteJSON(ev); err != nil {
		log.Printf("progress: send to job %s: %v", runID, err)
		h.detach(runID, conn)
	}
}
