package web

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/cjeanneret/HelioGo/internal/config"
	"github.com/cjeanneret/HelioGo/internal/logic/tracker"
)

// SnapshotHolder keeps the latest iteration snapshot for the status
// endpoint. The control loop stores into it between iterations; HTTP
// handlers only ever read copies. The tracker itself is never touched
// from here: the interface is strictly read-only.
type SnapshotHolder struct {
	mu    sync.RWMutex
	snap  tracker.Snapshot
	valid bool
}

// Store saves the given snapshot as the latest.
func (h *SnapshotHolder) Store(s tracker.Snapshot) {
	h.mu.Lock()
	h.snap = s
	h.valid = true
	h.mu.Unlock()
}

// Latest returns the most recent snapshot, and false if none was stored
// yet.
func (h *SnapshotHolder) Latest() (tracker.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap, h.valid
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Snapshots   *SnapshotHolder
	Config      *config.Config
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(broadcaster *StatusBroadcaster, snapshots *SnapshotHolder, cfg *config.Config, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Snapshots:   snapshots,
		Config:      cfg,
		staticFS:    staticFS,
	}
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleStatus returns the latest iteration snapshot as JSON.
// 204 until the first iteration completes.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.Snapshots.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// HandleConfig returns the axis configuration as JSON. The tracker has no
// runtime reconfiguration, so this is informational only.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	payload := map[string]config.AxisConfig{
		"pan":  h.Config.Pan,
		"tilt": h.Config.Tilt,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
