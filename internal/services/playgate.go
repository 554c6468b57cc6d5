package services

// GateInput is everything the daily play gate looks at. It is assembled by
// ServiceFeature and evaluated without touching storage, so the policy is
// testable on its own.
type GateInput struct {
	ScheduledToday bool
	GateEnforced   bool
	FeatureEnabled bool
	PlayedToday    int
	DailyLimit     int
}

// EvaluateGate returns nil when a play may proceed. Order matters: schedule
// first, then the feature switch, then the per-day ceiling.
func EvaluateGate(in GateInput) error {
	if in.GateEnforced && !in.ScheduledToday {
		return ErrNoFeatureToday
	}
	if !in.FeatureEnabled {
		return ErrFeatureDisabled
	}
	if in.DailyLimit > 0 && in.PlayedToday >= in.DailyLimit {
		return ErrDailyLimitReached
	}
	return nil
}

// RemainingPlays is the number of plays still allowed today; a zero or
// negative limit means unlimited.
func RemainingPlays(playedToday, dailyLimit int) int {
	if dailyLimit <= 0 {
		return -1
	}
	left := dailyLimit - playedToday
	if left < 0 {
		return 0
	}
	return left
}
