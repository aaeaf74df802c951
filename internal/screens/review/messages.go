package review

import (
	"time"
)

// loopTaskMsg carries one task posted to the engine's event loop. Running
// it inside Update keeps every engine call on the Bubble Tea goroutine.
type loopTaskMsg func()

// sessionStartedMsg is sent once the session start event is persisted.
type sessionStartedMsg struct {
	Err error
}

// countsMsg reports what is left in the session queue.
type countsMsg struct {
	Due, New int
	Err      error
}

// timerTickMsg is sent every second to refresh the card timer.
type timerTickMsg time.Time

// editorDoneMsg is sent when the external editor exits.
type editorDoneMsg struct {
	Err error
}
