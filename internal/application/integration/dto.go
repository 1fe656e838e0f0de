package integration

import (
	"fmt"
	"time"
)

// CursorPolicy decides when a run persists its window end as the
// channel's last import time
type CursorPolicy string

const (
	// CursorAdvanceBeforeFetch persists the cursor before calling the
	// marketplace. A failed order list fetch still consumes the window.
	CursorAdvanceBeforeFetch CursorPolicy = "advance_before_fetch"
	// CursorAdvanceAfterFetch persists the cursor once the order list has
	// been fetched. A failed fetch leaves the window to the next run.
	CursorAdvanceAfterFetch CursorPolicy = "advance_after_fetch"
)

// IsValid returns true if the policy is known
func (p CursorPolicy) IsValid() bool {
	switch p {
	case CursorAdvanceBeforeFetch, CursorAdvanceAfterFetch:
		return true
	}
	return false
}

// ParseCursorPolicy parses a configured policy; empty selects the default
func ParseCursorPolicy(s string) (CursorPolicy, error) {
	if s == "" {
		return CursorAdvanceBeforeFetch, nil
	}
	p := CursorPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown cursor policy %q", s)
	}
	return p, nil
}

// ImportConfig configures the order import service
type ImportConfig struct {
	CursorPolicy CursorPolicy
	// WindowOverlap widens each window backwards to pick up orders the
	// marketplace reported late. Re-fetched orders are skipped.
	WindowOverlap time.Duration
	// LockTTL bounds how long a crashed run can block its channel
	LockTTL time.Duration
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		CursorPolicy: CursorAdvanceBeforeFetch,
		LockTTL:      30 * time.Minute,
	}
}

// ImportOptions are per-run options
type ImportOptions struct {
	// RequireOrders turns an empty window into an error
	RequireOrders bool
}
