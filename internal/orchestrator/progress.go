package orchestrator

import "fmt"

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event without blocking. If the channel is full the
// event is dropped. Emit on a nil reporter is a no-op.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	if pr == nil {
		return
	}
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.State {
	case StateAwaitingDecision:
		return "  ○ deciding whether to retrieve..."
	case StateRetrieving:
		return fmt.Sprintf("  ● retrieving: %s", event.Message)
	case StateSkippingRetrieval:
		return "  ○ retrieval skipped"
	case StatePromptAssembled:
		return fmt.Sprintf("  ✓ prompt assembled (%s)", event.Message)
	default:
		return fmt.Sprintf("  ? %s", event.State)
	}
}
