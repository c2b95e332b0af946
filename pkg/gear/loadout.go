package gear

import (
	"osrs-toolkit/pkg/combat"
)

// Loadout is the optimizer's output: the assignment plus totals derived
// from it. Treat it as immutable once returned.
type Loadout struct {
	Items           Assignment
	TotalStats      Stats
	TotalCost       int
	RemainingBudget int
	MaxHit          int
}

// Recompute derives fresh totals from an assignment, however it was
// produced. Manual slot overrides go through Assignment.Equip (which keeps
// the two-handed/shield invariant) and then through here; no greedy
// re-search is involved.
func Recompute(items Assignment, req Request) *Loadout {
	unlocked := req.unlockedSet()

	total := Stats{}
	cost := 0
	for _, slot := range Slots {
		item := items[slot]
		if item == nil {
			continue
		}
		total = total.Add(item.Stats)
		cost += effectivePrice(item, unlocked)
	}

	return &Loadout{
		Items:           items,
		TotalStats:      total,
		TotalCost:       cost,
		RemainingBudget: req.BudgetGP - cost,
		MaxHit:          maxHitFor(total, req),
	}
}

// maxHitFor feeds the aggregate stats into the combat formulas, using the
// player's real level when stats are present and 99 otherwise.
func maxHitFor(total Stats, req Request) int {
	level := combat.DefaultLevel
	if req.Stats != nil {
		level = req.Stats.Level(damageSkillFor(req.Style))
	}

	switch req.Style {
	case combat.StyleRanged:
		return combat.RangedMaxHit(level, total.RangedStrength)
	case combat.StyleMagic:
		return combat.MagicMaxHit(total.MagicDamage)
	default:
		return combat.MeleeMaxHit(level, total.MeleeStrength)
	}
}

func damageSkillFor(style combat.Style) string {
	switch style {
	case combat.StyleRanged:
		return "ranged"
	case combat.StyleMagic:
		return "magic"
	default:
		return "strength"
	}
}
