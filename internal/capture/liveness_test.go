package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridelink/kycflow/internal/models"
)

func TestDeriveScore(t *testing.T) {
	assert.Equal(t, 0.0, DeriveScore(models.LivenessData{}))
	assert.Equal(t, 0.75, DeriveScore(models.LivenessData{
		BlinkDetected: true,
		HeadTurnLeft:  true,
		SmileDetected: true,
	}))
	assert.Equal(t, 1.0, DeriveScore(models.LivenessData{
		BlinkDetected: true,
		HeadTurnLeft:  true,
		HeadTurnRight: true,
		SmileDetected: true,
	}))
}

func TestEffectiveScorePrefersSupplied(t *testing.T) {
	result := LivenessResult{
		Data:  models.LivenessData{BlinkDetected: true},
		Score: 0.82,
	}
	assert.Equal(t, 0.82, result.EffectiveScore())
}

func TestEffectiveScoreFallsBackToDerived(t *testing.T) {
	// A missing score defaults to the derived fraction, never a crash
	result := LivenessResult{
		Data: models.LivenessData{BlinkDetected: true, HeadTurnLeft: true},
	}
	assert.Equal(t, 0.5, result.EffectiveScore())
}
