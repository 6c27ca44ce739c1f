package schedule

// PriceFor walks the loyalty ladder: index is the count of prior confirmed
// sessions, the last rung applies to every count at or past it. An empty
// ladder prices everything at zero, which config never produces.
func PriceFor(ladder []float64, confirmedSessions int) float64 {
	if len(ladder) == 0 {
		return 0
	}
	if confirmedSessions < 0 {
		confirmedSessions = 0
	}
	if confirmedSessions >= len(ladder) {
		return ladder[len(ladder)-1]
	}
	return ladder[confirmedSessions]
}
