package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/recoverly/flowedit/internal/logging"
	"github.com/recoverly/flowedit/pkg/domain"
)

// StreamManager fans graph diffs out to SSE subscribers, keyed by automation id.
// It implements ports.ChangePublisher.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- []byte]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty stream manager. A nil logger discards logs.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- []byte]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for one automation. The returned
// function unregisters and closes it.
func (sm *StreamManager) Subscribe(automationID string) (<-chan []byte, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan []byte, 10)
	if _, ok := sm.subscribers[automationID]; !ok {
		sm.subscribers[automationID] = make(map[chan<- []byte]struct{})
	}
	sm.subscribers[automationID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[automationID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, automationID)
				}
			}
		})
	}
}

// Subscribers reports how many clients follow an automation.
func (sm *StreamManager) Subscribers(automationID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[automationID])
}

// Publish broadcasts a diff without blocking. Slow clients lose messages.
func (sm *StreamManager) Publish(diff *domain.GraphDiff) {
	if diff == nil || diff.IsEmpty() {
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("failed to encode graph diff", "automation_id", diff.AutomationID, "error", err)
		return
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[diff.AutomationID] {
		select {
		case ch <- payload:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping diff", "automation_id", diff.AutomationID)
		}
	}
}

// watchFilter keeps diffs touching the requested element kinds.
type watchFilter struct {
	nodes, edges bool
}

func parseWatch(raw string) *watchFilter {
	if raw == "" {
		return nil
	}
	f := &watchFilter{}
	for _, field := range strings.Split(raw, ",") {
		switch strings.TrimSpace(field) {
		case "nodes":
			f.nodes = true
		case "edges":
			f.edges = true
		}
	}
	return f
}

func (f *watchFilter) keep(payload []byte) bool {
	if f == nil {
		return true
	}
	var diff domain.GraphDiff
	if err := json.Unmarshal(payload, &diff); err != nil {
		return true
	}
	if f.nodes && len(diff.AddedNodes)+len(diff.RemovedNodes)+len(diff.ChangedNodes) > 0 {
		return true
	}
	if f.edges && len(diff.AddedEdges)+len(diff.RemovedEdges)+len(diff.ChangedEdges) > 0 {
		return true
	}
	return false
}

// subscribeEvents handles GET /api/automations/{automationId}/events.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SSE: streaming not supported")
		return
	}

	automationID := chi.URLParam(r, "automationId")
	filter := parseWatch(r.URL.Query().Get("watch"))

	ch, cancel := s.Streams.Subscribe(automationID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: client subscribed", "automation_id", automationID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "automation_id", automationID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !filter.keep(msg) {
				continue
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
