package vaadin

import (
	"fmt"
	"time"
)

// TimeoutError reports an element or condition that never became ready.
type TimeoutError struct {
	What     string
	Selector string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("timed out after %s waiting for %s (%s)", e.Timeout, e.What, e.Selector)
	}
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.What)
}

// NotFoundError reports an element that is not present in the current render.
type NotFoundError struct {
	What     string
	Selector string
	RowIndex int
}

func (e *NotFoundError) Error() string {
	msg := e.What + " not found"
	if e.RowIndex >= 0 {
		msg = fmt.Sprintf("%s %d not found", e.What, e.RowIndex)
	}
	if e.Selector != "" {
		msg += " (" + e.Selector + ")"
	}
	return msg
}
