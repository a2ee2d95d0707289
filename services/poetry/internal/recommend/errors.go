package recommend

import "errors"

var (
	// ErrInvalidInput: the prompt is empty after trimming.
	ErrInvalidInput = errors.New("recommend: prompt must not be empty")
	// ErrStorage: the exact-title lookup failed. Never retried here.
	ErrStorage = errors.New("recommend: storage query failed")
	// ErrAIUnavailable: no generator configured or missing credentials. Never retried.
	ErrAIUnavailable = errors.New("recommend: ai service unavailable")
	// ErrAITransient marks a single failed generation attempt.
	ErrAITransient = errors.New("recommend: ai attempt failed")
	// ErrAIExhausted: every attempt failed.
	ErrAIExhausted = errors.New("recommend: ai retries exhausted")
)
