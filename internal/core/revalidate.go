package core

import "time"

// RevalidateInput describes a cached page at decision time.
type RevalidateInput struct {
	// Elapsed is the time since the cached output was last rendered.
	Elapsed time.Duration
	// After is the template's revalidation interval; zero means unset.
	After time.Duration
	// HasCheck reports whether a revalidate-check hook is configured.
	HasCheck bool
}

// RevalidateDecision is the outcome of the pure eligibility rules. At most
// one of Rebuild and ConsultCheck is true: when the check hook must be
// consulted, its result alone determines the rebuild.
type RevalidateDecision struct {
	Rebuild      bool
	ConsultCheck bool
}

// DecideRevalidate applies the interval/check layering: when an interval is
// set it gates everything, including whether the check hook is consulted at
// all. When only one of the two is configured, that one alone governs.
func DecideRevalidate(in RevalidateInput) RevalidateDecision {
	if in.After > 0 {
		if in.Elapsed < in.After {
			return RevalidateDecision{}
		}
		if in.HasCheck {
			return RevalidateDecision{ConsultCheck: true}
		}
		return RevalidateDecision{Rebuild: true}
	}

	if in.HasCheck {
		return RevalidateDecision{ConsultCheck: true}
	}

	return RevalidateDecision{}
}
