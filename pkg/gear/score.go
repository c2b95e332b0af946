package gear

import (
	"osrs-toolkit/pkg/combat"
)

// Score reduces an item's stat vector to a single number under the
// requested combat configuration. A nil item (empty slot) scores 0.
//
// Defence focus weights the matching defence column 4x plus the style's
// damage stat. Offense focus weights the style's damage stat 4x (20x for
// the magic damage percentage) plus the matching attack column. Weapons
// with a known attack speed are normalized to a 4-tick baseline.
func Score(item *Item, req Request) float64 {
	if item == nil {
		return 0
	}

	s := item.Stats
	var score float64

	if req.Focus == FocusDefence {
		score = float64(s.DefenceBonus(req.AttackType))*4 + secondaryDamageStat(s, req.Style)
	} else {
		switch req.Style {
		case combat.StyleRanged:
			score = float64(s.RangedStrength)*4 + float64(s.AttackRanged)
		case combat.StyleMagic:
			score = s.MagicDamage*20 + float64(s.AttackMagic)
		default:
			score = float64(s.MeleeStrength)*4 + meleeAttackBonus(s, req.AttackType)
		}
	}

	if item.Slot == SlotWeapon && item.SpeedTicks != nil && *item.SpeedTicks > 0 {
		score *= 4 / float64(*item.SpeedTicks)
	}

	return score
}

func secondaryDamageStat(s Stats, style combat.Style) float64 {
	switch style {
	case combat.StyleRanged:
		return float64(s.RangedStrength)
	case combat.StyleMagic:
		return s.MagicDamage
	default:
		return float64(s.MeleeStrength)
	}
}

// meleeAttackBonus picks the requested melee attack column, averaging all
// three when the attack type is not a melee one.
func meleeAttackBonus(s Stats, at combat.AttackType) float64 {
	switch at {
	case combat.AttackStab, combat.AttackSlash, combat.AttackCrush:
		return float64(s.AttackBonus(at))
	default:
		return float64(s.AttackStab+s.AttackSlash+s.AttackCrush) / 3
	}
}
