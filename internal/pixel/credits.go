package pixel

// CreditsRemaining reports how many placements a user may still make within
// the current window, given how many they have already committed.
// Saturates at zero rather than going negative.
func CreditsRemaining(maxCredits, recentPlacements int) int {
	remaining := maxCredits - recentPlacements
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SecondsUntilNextCredit estimates the wait before the caller's next credit
// frees up, assuming placements age out of the window at a steady
// regenRateSeconds cadence. Returns 0 when credits are already available.
func SecondsUntilNextCredit(maxCredits, recentPlacements, regenRateSeconds int) int {
	if recentPlacements < maxCredits {
		return 0
	}
	return regenRateSeconds
}
