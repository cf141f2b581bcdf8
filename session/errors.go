package session

import (
	"fmt"
	"sync"
)

// The last-error slot is process-wide, not thread-local: one mutex-protected
// string shared by all callers, overwritten by each failing call and left
// untouched on success. Callers that interleave operations from multiple
// threads and need the exact message for a specific call must serialize the
// (call, fetch-message) pair themselves.
var lastError struct {
	mu  sync.Mutex
	msg string
	set bool
}

// LastError returns the message describing the most recent failing call, or
// ok=false when no failure has been recorded since startup or Cleanup.
func LastError() (string, bool) {
	lastError.mu.Lock()
	defer lastError.mu.Unlock()
	return lastError.msg, lastError.set
}

func clearLastError() {
	lastError.mu.Lock()
	defer lastError.mu.Unlock()
	lastError.msg = ""
	lastError.set = false
}

// fail records a credential-free failure message and returns the code. Every
// failure path at the orchestrator boundary funnels through here so a
// non-zero ResultCode always has a matching message.
func fail(code ResultCode, format string, args ...interface{}) ResultCode {
	lastError.mu.Lock()
	defer lastError.mu.Unlock()
	lastError.msg = fmt.Sprintf(format, args...)
	lastError.set = true
	return code
}
