package domain

import "fmt"

// OverlapPolicy decides which resolution a tab keeps when executions overlap
type OverlapPolicy string

const (
	// LastResolutionWins applies every resolution; the slowest call decides the final result
	LastResolutionWins OverlapPolicy = "last_resolution"
	// LatestDispatchWins ignores resolutions older than the tab's latest dispatch
	LatestDispatchWins OverlapPolicy = "latest_dispatch"
)

// ClosePolicy decides what happens to in-flight executions of a closed tab
type ClosePolicy string

const (
	// KeepRunningOnClose lets the execution finish and records it in history
	KeepRunningOnClose ClosePolicy = "keep_running"
	// CancelOnClose cancels the execution and drops its history entry
	CancelOnClose ClosePolicy = "cancel"
)

// ParseOverlapPolicy validates a configured overlap policy name
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch OverlapPolicy(s) {
	case "", LastResolutionWins:
		return LastResolutionWins, nil
	case LatestDispatchWins:
		return LatestDispatchWins, nil
	}
	return "", fmt.Errorf("invalid overlap policy %q (expected %s or %s)", s, LastResolutionWins, LatestDispatchWins)
}

// ParseClosePolicy validates a configured close policy name
func ParseClosePolicy(s string) (ClosePolicy, error) {
	switch ClosePolicy(s) {
	case "", KeepRunningOnClose:
		return KeepRunningOnClose, nil
	case CancelOnClose:
		return CancelOnClose, nil
	}
	return "", fmt.Errorf("invalid close policy %q (expected %s or %s)", s, KeepRunningOnClose, CancelOnClose)
}
