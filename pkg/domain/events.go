package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEdit         EventType = "edit"
	EventEditRejected EventType = "edit_rejected"
	EventUndo         EventType = "undo"
	EventRedo         EventType = "redo"
	EventSave         EventType = "save"
)

// EditEvent describes one committed (or rejected) change to an editor session.
type EditEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	AutomationID string    `json:"automation_id,omitempty"`
	Op           string    `json:"op,omitempty"`
	Err          error     `json:"-"`

	// HistoryLen and HistoryPos describe the history stack after the event.
	HistoryLen int `json:"history_len"`
	HistoryPos int `json:"history_pos"`
}

// LifecycleHooks defines callbacks for editor observability.
// Hooks run synchronously on the editing goroutine and must not block.
type LifecycleHooks struct {
	OnEdit         func(*EditEvent)
	OnEditRejected func(*EditEvent)
	OnUndo         func(*EditEvent)
	OnRedo         func(*EditEvent)
	OnSave         func(*EditEvent)
}

// Emit dispatches the event to the matching hook, if any.
func (h LifecycleHooks) Emit(e *EditEvent) {
	var fn func(*EditEvent)
	switch e.Type {
	case EventEdit:
		fn = h.OnEdit
	case EventEditRejected:
		fn = h.OnEditRejected
	case EventUndo:
		fn = h.OnUndo
	case EventRedo:
		fn = h.OnRedo
	case EventSave:
		fn = h.OnSave
	}
	if fn != nil {
		fn(e)
	}
}

// Chain combines hooks; each callback of every set runs in order.
func Chain(sets ...LifecycleHooks) LifecycleHooks {
	pick := func(get func(LifecycleHooks) func(*EditEvent)) func(*EditEvent) {
		var fns []func(*EditEvent)
		for _, s := range sets {
			if fn := get(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(e *EditEvent) {
			for _, fn := range fns {
				fn(e)
			}
		}
	}
	return LifecycleHooks{
		OnEdit:         pick(func(h LifecycleHooks) func(*EditEvent) { return h.OnEdit }),
		OnEditRejected: pick(func(h LifecycleHooks) func(*EditEvent) { return h.OnEditRejected }),
		OnUndo:         pick(func(h LifecycleHooks) func(*EditEvent) { return h.OnUndo }),
		OnRedo:         pick(func(h LifecycleHooks) func(*EditEvent) { return h.OnRedo }),
		OnSave:         pick(func(h LifecycleHooks) func(*EditEvent) { return h.OnSave }),
	}
}
