package monitor

import (
	"time"

	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/probe"
	"github.com/hamed0406/netumo/internal/repo"
)

// HTTPTransition folds one http probe outcome into the target's availability
// state. before must be the status prior to the transient CHECKING marker;
// LastStatusChangeAt is set only when the new status actually differs from it.
func HTTPTransition(before domain.Status, failures int, out probe.HTTPOutcome, now time.Time) repo.HTTPHealth {
	h := repo.HTTPHealth{
		LastCheckedAt:  now,
		ResponseTimeMS: &out.LatencyMS,
	}
	if out.StatusCode != 0 {
		code := out.StatusCode
		h.HTTPStatus = &code
	}

	if out.Up {
		h.Status = domain.StatusUp
		h.ConsecutiveFailures = 0
	} else {
		h.Status = domain.StatusDown
		h.ConsecutiveFailures = failures + 1
	}

	if before != h.Status {
		changed := now
		h.LastStatusChangeAt = &changed
	}
	return h
}
