package progress

import (
	"encoding/json"
	"reflect"
	"sync"
	"time"
)

// Stage represents the current stage of an export
type Stage string

const (
	StagePending   Stage = "pending"
	StageRendering Stage = "rendering"
	StageUploading Stage = "uploading"
	StageComplete  Stage = "complete"
	StageError     Stage = "error"
)

// Event represents a progress event
type Event struct {
	Stage       Stage        `json:"stage"`
	Progress    float64      `json:"progress"`
	Message     string       `json:"message"`
	Timestamp   time.Time    `json:"timestamp"`
	PageDetails *PageDetails `json:"page_details,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// PageDetails contains information about the page currently being rendered
type PageDetails struct {
	PageNumber    int `json:"page_number"`
	TotalPages    int `json:"total_pages"`
	RenderedPages int `json:"rendered_pages"`
}

// Tracker manages progress tracking for one export
type Tracker struct {
	mu          sync.RWMutex
	stage       Stage
	progress    float64
	message     string
	pageDetails *PageDetails
	error       error
	listeners   []func(Event)
}

// NewTracker creates a new Tracker instance
func NewTracker() *Tracker {
	return &Tracker{
		stage:     StagePending,
		listeners: make([]func(Event), 0),
	}
}

// AddListener adds a new progress event listener
func (t *Tracker) AddListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// RemoveListener removes a progress event listener
func (t *Tracker) RemoveListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	listenerPtr := reflect.ValueOf(listener).Pointer()
	for i := range t.listeners {
		if reflect.ValueOf(t.listeners[i]).Pointer() == listenerPtr {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			break
		}
	}
}

// Update updates the progress and notifies all listeners
func (t *Tracker) Update(stage Stage, progress float64, message string) {
	t.mu.Lock()
	t.stage = stage
	t.progress = progress
	t.message = message
	t.mu.Unlock()

	t.notifyListeners(Event{
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// UpdatePage updates page-specific progress
func (t *Tracker) UpdatePage(pageNumber, totalPages, renderedPages int) {
	t.mu.Lock()
	t.pageDetails = &PageDetails{
		PageNumber:    pageNumber,
		TotalPages:    totalPages,
		RenderedPages: renderedPages,
	}
	event := Event{
		Stage:       t.stage,
		Progress:    t.progress,
		Message:     t.message,
		Timestamp:   time.Now(),
		PageDetails: t.pageDetails,
	}
	t.mu.Unlock()

	t.notifyListeners(event)
}

// SetError sets an error state and notifies all listeners
func (t *Tracker) SetError(err error) {
	t.mu.Lock()
	t.stage = StageError
	t.error = err
	progress := t.progress
	t.mu.Unlock()

	t.notifyListeners(Event{
		Stage:     StageError,
		Progress:  progress,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Error:     err.Error(),
	})
}

// notifyListeners sends an event to all registered listeners
func (t *Tracker) notifyListeners(event Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, listener := range t.listeners {
		listener(event)
	}
}

// CurrentState returns the current progress state
func (t *Tracker) CurrentState() Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	event := Event{
		Stage:       t.stage,
		Progress:    t.progress,
		Message:     t.message,
		Timestamp:   time.Now(),
		PageDetails: t.pageDetails,
	}
	if t.error != nil {
		event.Error = t.error.Error()
	}
	return event
}

// MarshalJSON implements json.Marshaler for Event
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(&e),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Event
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, aux.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = t
	return nil
}
