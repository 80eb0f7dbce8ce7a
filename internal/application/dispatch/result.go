package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/update"
)

// Status is how handling of one update ended.
type Status int

const (
	// StatusHandled means every outbound call succeeded.
	StatusHandled Status = iota
	// StatusIgnored means the update needed no outbound call.
	StatusIgnored
	// StatusFailed means a handler or outbound call failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusHandled:
		return "handled"
	case StatusIgnored:
		return "ignored"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is what a handler returns instead of panicking or logging itself.
type Result struct {
	Status  Status
	Op      string
	Trigger string
	Sent    *SentMessage
	Err     error
}

func handled(op, trigger string, sent *SentMessage) Result {
	return Result{Status: StatusHandled, Op: op, Trigger: trigger, Sent: sent}
}

func ignored(op string) Result {
	return Result{Status: StatusIgnored, Op: op}
}

func failed(op, trigger string, err error) Result {
	return Result{Status: StatusFailed, Op: op, Trigger: trigger, Err: err}
}

// Error is the transient failure record built at the dispatch boundary. Code
// is the platform error code when the cause is a *shared.APIError, else 0.
type Error struct {
	Op      string
	Message string
	Code    int
	Err     error
}

// Error formats platform failures the way they are logged.
func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("Telegram API Error:\n[%d]\n%s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError converts any handler failure to an *Error.
func NewError(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr
	}
	if apiErr, ok := shared.AsAPIError(err); ok {
		return &Error{Op: op, Message: apiErr.Description, Code: apiErr.Code, Err: err}
	}
	return &Error{Op: op, Message: err.Error(), Err: err}
}

// Outcome is reported to observers once per dispatched update.
type Outcome struct {
	UpdateID  int64
	Kind      update.Kind
	ChatID    int64
	Trigger   string
	Status    Status
	ErrorCode int
	Error     string
	SentID    int
	Duration  time.Duration
	At        time.Time
}
