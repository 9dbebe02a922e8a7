package tts

import (
	"errors"
	"fmt"
)

// Common TTS errors
var (
	// ErrEmptyText indicates the text to synthesize was empty or whitespace-only
	ErrEmptyText = errors.New("text is empty")

	// ErrInvalidSpeed indicates the speed multiplier is not a positive number
	ErrInvalidSpeed = errors.New("speed must be a positive number")

	// ErrInvalidLanguage indicates the language code is not a well-formed tag
	ErrInvalidLanguage = errors.New("invalid language code")

	// ErrInvalidEngine indicates an unknown engine was specified
	ErrInvalidEngine = errors.New("invalid TTS engine specified")

	// ErrEngineNotAvailable indicates the selected engine is not available
	ErrEngineNotAvailable = errors.New("selected TTS engine is not available")

	// ErrSynthesisFailed indicates synthesis operation failed
	ErrSynthesisFailed = errors.New("text synthesis failed")

	// ErrPlaybackFailed indicates no playback mechanism could play the file
	ErrPlaybackFailed = errors.New("audio playback failed")
)

// TTSError represents a TTS-specific error with additional context
type TTSError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TTSError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *TTSError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error that belongs to the error code, so
// errors.Is(err, ErrEngineNotAvailable) holds whatever the wrapped cause is.
func (e *TTSError) Is(target error) bool {
	switch e.Code {
	case ErrorCodeEngineUnavailable:
		return target == ErrEngineNotAvailable
	case ErrorCodeEngineFailure:
		return target == ErrSynthesisFailed
	case ErrorCodePlaybackFailure:
		return target == ErrPlaybackFailed
	}
	return false
}

// ErrorCode identifies specific error types
type ErrorCode string

const (
	// Input errors
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Engine errors
	ErrorCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrorCodeEngineFailure     ErrorCode = "ENGINE_FAILURE"

	// Playback errors
	ErrorCodePlaybackFailure ErrorCode = "PLAYBACK_FAILURE"
)

// NewTTSError creates a new TTS error with context
func NewTTSError(code ErrorCode, message string, cause error) *TTSError {
	return &TTSError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *TTSError) WithContext(key string, value interface{}) *TTSError {
	e.Context[key] = value
	return e
}

// ValidationError reports bad input such as empty text. It is never retried.
func ValidationError(cause error) *TTSError {
	return NewTTSError(ErrorCodeInvalidInput, "invalid request", cause)
}

// UnavailableBackendError reports that the backend for kind cannot be used
// in this process.
func UnavailableBackendError(kind EngineKind, cause error) *TTSError {
	msg := fmt.Sprintf("%s engine is not available", kind.Label())
	return NewTTSError(ErrorCodeEngineUnavailable, msg, cause).WithContext("engine", kind.String())
}

// SynthesisError reports a failure inside a working backend.
func SynthesisError(kind EngineKind, cause error) *TTSError {
	msg := fmt.Sprintf("%s synthesis failed", kind.Label())
	return NewTTSError(ErrorCodeEngineFailure, msg, cause).WithContext("engine", kind.String())
}

// PlaybackError reports that every playback mechanism failed.
func PlaybackError(path string, cause error) *TTSError {
	return NewTTSError(ErrorCodePlaybackFailure, "unable to play audio", cause).WithContext("path", path)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsUnavailable reports whether err is an UnavailableBackendError.
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeEngineUnavailable) }

// IsPlayback reports whether err is a PlaybackError.
func IsPlayback(err error) bool { return hasCode(err, ErrorCodePlaybackFailure) }

func hasCode(err error, code ErrorCode) bool {
	var te *TTSError
	return errors.As(err, &te) && te.Code == code
}
