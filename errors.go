package srtp

import (
	"golang.org/x/xerrors"

	"github.com/lanikai/srtp/internal/replay"
)

// dropReason classifies why a packet-transform operation returned false.
// It never crosses the public API as an error value (spec section 7: "Errors
// during packet transform are NEVER surfaced as exceptions... they are
// reported as a boolean false"); it exists purely so log call sites can
// report *why* without callers needing to parse log text.
type dropReason int

const (
	dropNone dropReason = iota
	dropBadVersion
	dropReplayOld
	dropReplayDuplicate
	dropAuthFailure
)

func (r dropReason) String() string {
	switch r {
	case dropBadVersion:
		return "BadVersion"
	case dropReplayOld:
		return "ReplayOld"
	case dropReplayDuplicate:
		return "ReplayDuplicate"
	case dropAuthFailure:
		return "AuthFailure"
	default:
		return "none"
	}
}

// replayDropReason maps a replay.Verdict to the dropReason a log call site
// reports for it. Accept never reaches here; callers only call this once
// Check has already returned a rejecting verdict.
func replayDropReason(v replay.Verdict) dropReason {
	switch v {
	case replay.RejectOld:
		return dropReplayOld
	case replay.RejectDuplicate:
		return dropReplayDuplicate
	default:
		return dropNone
	}
}

// newConstructionError wraps a construction-time failure (PolicyMismatch
// and friends, spec section 7), which — unlike packet-transform failures —
// is surfaced to the caller as a real error.
func newConstructionError(format string, a ...interface{}) error {
	return xerrors.Errorf(format, a...)
}
