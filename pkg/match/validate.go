package match

// Validate is the single gate before any external call is issued. The
// host delivers match-end events for warm-up-only matches too; those
// arrive with no per-player stats and there is nothing to do for them.
func Validate(event *MatchEndEvent) error {
	if len(event.PlayerStats) == 0 {
		return ValidationError{Reason: "player stat list is missing or empty"}
	}
	return nil
}
