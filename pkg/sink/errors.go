// ABOUTME: Sink error kinds and sentinel errors
// ABOUTME: Distinguishes which initialization step disabled audio
package sink

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the initialization step that failed
type ErrorKind int

const (
	// SubsystemInitFailure means the platform audio stack is unavailable
	SubsystemInitFailure ErrorKind = iota + 1
	// EngineCreateFailure means the audio engine could not be created
	EngineCreateFailure
	// OutputVoiceCreateFailure means the device-facing voice could not be created
	OutputVoiceCreateFailure
	// InputVoiceCreateFailure means the PCM source voice could not be created or started
	InputVoiceCreateFailure
)

func (k ErrorKind) String() string {
	switch k {
	case SubsystemInitFailure:
		return "audio subsystem initialization failed"
	case EngineCreateFailure:
		return "audio engine creation failed"
	case OutputVoiceCreateFailure:
		return "output voice creation failed"
	case InputVoiceCreateFailure:
		return "input voice creation failed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

var (
	ErrSubsystemInit     = errors.New(SubsystemInitFailure.String())
	ErrEngineCreate      = errors.New(EngineCreateFailure.String())
	ErrOutputVoiceCreate = errors.New(OutputVoiceCreateFailure.String())
	ErrInputVoiceCreate  = errors.New(InputVoiceCreateFailure.String())

	// ErrFailed is returned by Init once a previous Init failed
	ErrFailed = errors.New("audio sink failed")

	// ErrAlreadyInitialized is returned by a second Init
	ErrAlreadyInitialized = errors.New("audio sink already initialized")

	// ErrClosed is returned by Init after Close
	ErrClosed = errors.New("audio sink closed")

	// ErrInvalidQuality is returned for a quality divisor that is not positive
	ErrInvalidQuality = errors.New("invalid sound quality divisor")
)

// InitError reports a failed initialization step. It matches the sentinel for its kind
// with errors.Is and unwraps to the backend's error.
type InitError struct {
	Kind ErrorKind
	Err  error
}

func (e *InitError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for the failure kind
func (e *InitError) Is(target error) bool {
	switch target {
	case ErrSubsystemInit:
		return e.Kind == SubsystemInitFailure
	case ErrEngineCreate:
		return e.Kind == EngineCreateFailure
	case ErrOutputVoiceCreate:
		return e.Kind == OutputVoiceCreateFailure
	case ErrInputVoiceCreate:
		return e.Kind == InputVoiceCreateFailure
	}
	return false
}

// KindOf returns the failure kind carried by err, or 0
func KindOf(err error) ErrorKind {
	var initErr *InitError
	if errors.As(err, &initErr) {
		return initErr.Kind
	}
	return 0
}
