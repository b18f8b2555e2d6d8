package domain

import "errors"

var (
	// ErrEmptyInput is returned when aggregation is requested over no articles.
	ErrEmptyInput = errors.New("empty input")
	// ErrClassifierUnavailable marks a backend that is down or timed out.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	// ErrInvalidPrediction marks a backend answer outside the label/confidence contract.
	ErrInvalidPrediction = errors.New("invalid prediction")
	// ErrClassificationFailed is returned when every backend failed for an article.
	ErrClassificationFailed = errors.New("classification failed")
)
