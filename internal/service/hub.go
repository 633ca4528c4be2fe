package service

import (
	"sync"
	"time"
)

// Entity kinds and actions carried by change events.
const (
	KindGroup        = "group"
	KindMember       = "member"
	KindTask         = "task"
	KindSetlist      = "setlist"
	KindMerch        = "merch"
	KindSale         = "sale"
	KindFinance      = "finance"
	KindNotification = "notification"

	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionCompleted = "completed"
)

// Event describes a committed change to a group's data. Events are
// published after the store write succeeds, never before.
type Event struct {
	GroupID  string    `json:"group_id"`
	Kind     string    `json:"kind"`
	Action   string    `json:"action"`
	EntityID string    `json:"entity_id"`
	At       time.Time `json:"at"`
}

const subscriberBuffer = 16

// Hub fans change events out to per-group subscribers. There is one
// hub per process, owned by whoever wires the services; nothing here
// is package-level state.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan Event)}
}

// Subscribe registers for a group's events. The returned cancel func
// must be called when the subscriber goes away; afterwards the channel
// is closed.
func (h *Hub) Subscribe(groupID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[groupID] == nil {
		h.subs[groupID] = make(map[int]chan Event)
	}
	id := h.nextID
	h.nextID++

	ch := make(chan Event, subscriberBuffer)
	h.subs[groupID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[groupID][id]; ok {
			delete(h.subs[groupID], id)
			close(sub)
			if len(h.subs[groupID]) == 0 {
				delete(h.subs, groupID)
			}
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its group. Slow
// subscribers with a full buffer miss the event instead of blocking
// the writer.
func (h *Hub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[event.GroupID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers reports the number of active subscriptions for a group.
func (h *Hub) Subscribers(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[groupID])
}
