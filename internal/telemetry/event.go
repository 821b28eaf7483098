package telemetry

import (
	"fmt"
	"maps"
	"runtime"
	"runtime/debug"
)

// Kind distinguishes trace events from exception events.
type Kind string

const (
	KindTrace     Kind = "trace"
	KindException Kind = "exception"
)

const source = "roachagram"

// ExceptionSnapshot is the serializable part of an error.
type ExceptionSnapshot struct {
	TypeName     string `json:"type"`
	Message      string `json:"message"`
	StackTrace   string `json:"stackTrace"`
	Source       string `json:"source"`
	OriginMethod string `json:"targetSite"`
}

// Event is one telemetry record.
type Event struct {
	Kind       Kind
	Message    string
	Properties map[string]string
	Exception  *ExceptionSnapshot
}

// Trace builds an informational event. props is copied.
func Trace(message string, props map[string]string) Event {
	return Event{Kind: KindTrace, Message: message, Properties: cloneProps(props)}
}

// Exception builds an exception event from err, capturing the current stack
// and the calling function.
func Exception(err error, props map[string]string) Event {
	snap := &ExceptionSnapshot{Source: source, StackTrace: string(debug.Stack())}
	if err != nil {
		snap.TypeName = fmt.Sprintf("%T", err)
		snap.Message = err.Error()
	}
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			snap.OriginMethod = fn.Name()
		}
	}
	return Event{
		Kind:       KindException,
		Message:    snap.Message,
		Properties: cloneProps(props),
		Exception:  snap,
	}
}

func cloneProps(props map[string]string) map[string]string {
	if props == nil {
		return map[string]string{}
	}
	return maps.Clone(props)
}
