// Package combat holds the pure max-hit formulas shared by the equipment
// optimizer and the bot commands. No I/O, no state.
package combat

import "math"

// Style selects which damage formula applies
type Style string

const (
	StyleMelee  Style = "melee"
	StyleRanged Style = "ranged"
	StyleMagic  Style = "magic"
)

// AttackType narrows a style to one attack bonus column
type AttackType string

const (
	AttackStab   AttackType = "stab"
	AttackSlash  AttackType = "slash"
	AttackCrush  AttackType = "crush"
	AttackMagic  AttackType = "magic"
	AttackRanged AttackType = "ranged"
)

// DefaultLevel is assumed when no player stats are available
const DefaultLevel = 99

// fireSurgeBase is the reference spell's base max hit used for magic
// estimates. Real magic damage depends on the chosen spell; scaling one
// fixed spell by the equipment damage bonus is a deliberate approximation.
const fireSurgeBase = 24

// MeleeMaxHit computes the melee max hit for an aggressive-style attacker:
// effective strength is level + 3 (style) + 8, then the standard
// floor(0.5 + eff * (bonus + 64) / 640) roll.
func MeleeMaxHit(strengthLevel, strengthBonus int) int {
	return baseMaxHit(strengthLevel, strengthBonus)
}

// RangedMaxHit computes the ranged max hit; the formula shape matches
// melee with ranged level and ranged strength bonus.
func RangedMaxHit(rangedLevel, rangedStrength int) int {
	return baseMaxHit(rangedLevel, rangedStrength)
}

// MagicMaxHit scales the reference spell's base hit by the equipment magic
// damage bonus percentage.
func MagicMaxHit(magicDamagePercent float64) int {
	return int(math.Floor(float64(fireSurgeBase) * (1 + magicDamagePercent/100)))
}

// MaxHit dispatches to the style-appropriate formula. bonus is the melee
// strength or ranged strength bonus; magicDamagePercent only matters for
// StyleMagic. Unknown styles hit 0.
func MaxHit(style Style, level, bonus int, magicDamagePercent float64) int {
	switch style {
	case StyleMelee:
		return MeleeMaxHit(level, bonus)
	case StyleRanged:
		return RangedMaxHit(level, bonus)
	case StyleMagic:
		return MagicMaxHit(magicDamagePercent)
	default:
		return 0
	}
}

func baseMaxHit(level, bonus int) int {
	effective := level + 3 + 8
	return int(math.Floor(0.5 + float64(effective)*float64(bonus+64)/640))
}
