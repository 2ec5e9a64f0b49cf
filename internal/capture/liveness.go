package capture

import "github.com/ridelink/kycflow/internal/models"

// LivenessResult is the outcome of the interactive liveness challenge:
// the four boolean checks plus a score. Absent challenges stay false and
// a zero score falls back to the derived fraction of passed checks.
type LivenessResult struct {
	Data  models.LivenessData
	Score float64
}

// EffectiveScore returns the supplied score, or derives one from the
// challenge results when the capture layer did not provide one
func (r LivenessResult) EffectiveScore() float64 {
	if r.Score > 0 {
		return r.Score
	}
	return DeriveScore(r.Data)
}

// DeriveScore computes the fraction of liveness checks that passed
func DeriveScore(d models.LivenessData) float64 {
	passed := 0
	for _, ok := range []bool{d.BlinkDetected, d.HeadTurnLeft, d.HeadTurnRight, d.SmileDetected} {
		if ok {
			passed++
		}
	}
	return float64(passed) / 4
}
