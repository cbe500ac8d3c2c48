package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// ErrAnalysisFailed means the prescription image produced no usable entries.
	ErrAnalysisFailed = errors.New("prescription analysis failed")
	// ErrSaveFailed wraps any storage failure surfaced to the user.
	ErrSaveFailed = errors.New("save failed")
)
