package monitor

// HealthScore computes the 0-100 health score from the last hour's error
// volume and the current recovery rate.
//
// Starting from 100, it subtracts up to 50 points for error volume (2 per
// error in the last hour), up to 30 points for critical errors (10 each),
// and half a point per percentage point the recovery rate falls short of
// 80. The result is clamped to [0, 100]. With no recorded data the score
// is 100.
func HealthScore(recentHourErrors, recentHourCritical int, recoveryRate float64) float64 {
	score := 100.0
	score -= min(float64(recentHourErrors)*2, 50)
	score -= min(float64(recentHourCritical)*10, 30)
	if recoveryRate < 80 {
		score -= (80 - recoveryRate) * 0.5
	}
	return min(max(score, 0), 100)
}

// ComputeTrend classifies error volume movement: the last hour against
// the hour before it. More than 1.5x the previous volume is increasing,
// less than 0.5x is decreasing, anything between is stable. Both
// comparisons are strict, so equal volumes (including zero against zero)
// are stable.
func ComputeTrend(recent, previous int) Trend {
	switch {
	case float64(recent) > 1.5*float64(previous):
		return TrendIncreasing
	case float64(recent) < 0.5*float64(previous):
		return TrendDecreasing
	default:
		return TrendStable
	}
}
