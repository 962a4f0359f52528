package pipeline

import "time"

// Status of a source as reported to observers.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Event is a progress notification for one source of a run.
type Event struct {
	RunID   string    `json:"run_id"`
	Index   int       `json:"index"`
	Total   int       `json:"total"`
	Source  string    `json:"source"`
	Stage   Stage     `json:"stage,omitempty"`
	Status  Status    `json:"status"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Observer receives progress events. Notify must not block for long; it
// is called from the run loop.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Notify(Event) {}
