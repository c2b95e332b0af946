package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeleeMaxHit(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		bonus    int
		expected int
	}{
		{"level 99 no gear", 99, 0, 11},
		{"level 99 bonus 100", 99, 100, 28},
		{"level 99 whip-tier bonus", 99, 82, 25},
		{"level 1 no gear", 1, 0, 1},
		{"level 50 bonus 40", 50, 40, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MeleeMaxHit(tt.level, tt.bonus))
		})
	}
}

func TestRangedMatchesMeleeShape(t *testing.T) {
	// Same formula, different inputs; spot-check equivalence.
	assert.Equal(t, MeleeMaxHit(99, 80), RangedMaxHit(99, 80))
	assert.Equal(t, MeleeMaxHit(70, 49), RangedMaxHit(70, 49))
}

func TestMagicMaxHit(t *testing.T) {
	assert.Equal(t, 24, MagicMaxHit(0), "no damage bonus leaves the base hit")
	assert.Equal(t, 27, MagicMaxHit(15))
	assert.Equal(t, 28, MagicMaxHit(20))
}

func TestMaxHitDispatch(t *testing.T) {
	assert.Equal(t, MeleeMaxHit(99, 118), MaxHit(StyleMelee, 99, 118, 0))
	assert.Equal(t, RangedMaxHit(99, 80), MaxHit(StyleRanged, 99, 80, 0))
	assert.Equal(t, MagicMaxHit(23.5), MaxHit(StyleMagic, 99, 0, 23.5))
	assert.Equal(t, 0, MaxHit(Style("bogus"), 99, 100, 0))
}

func TestMaxHitMonotonicInBonus(t *testing.T) {
	prev := -1
	for bonus := 0; bonus <= 200; bonus += 5 {
		hit := MeleeMaxHit(99, bonus)
		assert.GreaterOrEqual(t, hit, prev, "bonus %d", bonus)
		prev = hit
	}
}
