package contract

import "errors"

var (
	// ErrConfiguration marks invalid user configuration such as an unknown stat key or a NaN ratio.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrRequestAborted is what an engine returns when a run was cancelled on request.
	ErrRequestAborted = errors.New("request aborted")

	// ErrRequestFailed wraps every engine failure surfaced by the controller.
	ErrRequestFailed = errors.New("stat weights request failed")

	// ErrMetricNotApplicable is returned when a metric is absent from the last result.
	ErrMetricNotApplicable = errors.New("metric not applicable")

	// ErrNoResult is returned by operations that need a completed run.
	ErrNoResult = errors.New("no stat weights result")
)
