package gear

import (
	"context"
	"errors"
	"fmt"
	"math"

	"osrs-toolkit/pkg/combat"
	"osrs-toolkit/pkg/hiscores"

	"github.com/sirupsen/logrus"
)

// ErrInvalidBudget rejects negative budgets before any computation
var ErrInvalidBudget = errors.New("budget must not be negative")

// ErrCatalogUnavailable wraps equipment catalog fetch failures
var ErrCatalogUnavailable = errors.New("equipment catalog unavailable")

// Focus chooses whether scoring favors damage output or survivability
type Focus string

const (
	FocusOffense Focus = "offense"
	FocusDefence Focus = "defence"
)

// Request parameterizes one optimization run. Stats may be nil, in which
// case requirement gating is skipped and max hit assumes level 99.
type Request struct {
	Style          combat.Style
	AttackType     combat.AttackType
	Focus          Focus
	BudgetGP       int
	MembersAllowed bool
	Unlocked       []int
	Stats          *hiscores.Stats
}

func (r Request) unlockedSet() map[int]bool {
	set := make(map[int]bool, len(r.Unlocked))
	for _, id := range r.Unlocked {
		set[id] = true
	}
	return set
}

// Optimizer greedily assembles the highest-scoring affordable loadout.
// Greedy means locally optimal upgrades only; it can miss pairs of swaps
// that only pay off jointly. That is the accepted tradeoff over an
// exhaustive search of 11 slots times dozens of candidates.
type Optimizer struct {
	source CatalogSource
	log    *logrus.Entry
}

// NewOptimizer creates an optimizer over the given catalog source
func NewOptimizer(source CatalogSource, log *logrus.Entry) *Optimizer {
	return &Optimizer{source: source, log: log}
}

type candidate struct {
	item  *Item
	price int
	score float64
}

type upgrade struct {
	item       *Item
	scoreDelta float64
	costDelta  int
	efficiency float64
}

// Optimize runs the greedy allocation loop and returns the resulting
// loadout. An all-empty result is valid when nothing affordable improves
// on empty slots.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*Loadout, error) {
	if req.BudgetGP < 0 {
		return nil, ErrInvalidBudget
	}

	items, err := o.source.Equipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	unlocked := req.unlockedSet()
	candidates := o.buildCandidates(items, req, unlocked)

	assign := NewAssignment()
	remaining := req.BudgetGP
	passes := 0

	for {
		best, found := bestUpgrade(assign, candidates, remaining, unlocked, req)
		if !found {
			break
		}
		// Equip clears a conflicting shield itself; the refund is already
		// folded into costDelta by bestUpgrade.
		assign.Equip(best.item)
		remaining -= best.costDelta
		passes++
	}

	if o.log != nil {
		o.log.WithFields(logrus.Fields{
			"style":    req.Style,
			"focus":    req.Focus,
			"budget":   req.BudgetGP,
			"upgrades": passes,
		}).Debug("Loadout assembled")
	}

	return Recompute(assign, req), nil
}

// buildCandidates filters the catalog down to admissible items per slot,
// resolving effective prices (unlocked items are free).
func (o *Optimizer) buildCandidates(items []Item, req Request, unlocked map[int]bool) map[Slot][]candidate {
	candidates := make(map[Slot][]candidate)
	for i := range items {
		item := &items[i]
		if item.Members && !req.MembersAllowed {
			continue
		}
		free := unlocked[item.ID]
		if !free {
			if !item.Tradeable {
				continue
			}
			if item.Price == nil || *item.Price < 0 {
				continue
			}
		}
		if req.Stats != nil && !meetsRequirements(item, req.Stats) {
			continue
		}

		score := Score(item, req)
		if score <= 0 {
			// can never beat an empty slot, let alone an equipped one
			continue
		}

		price := 0
		if !free && item.Price != nil {
			price = *item.Price
		}
		candidates[item.Slot] = append(candidates[item.Slot], candidate{item: item, price: price, score: score})
	}
	return candidates
}

// bestUpgrade scans every slot for the single highest-efficiency
// affordable improvement over the current assignment. Free upgrades carry
// infinite efficiency and so beat any finite-cost one.
func bestUpgrade(assign Assignment, candidates map[Slot][]candidate, remaining int, unlocked map[int]bool, req Request) (upgrade, bool) {
	var best upgrade
	found := false

	for _, slot := range Slots {
		if slot == SlotShield {
			// a two-handed weapon blocks the shield slot entirely until
			// the weapon itself is swapped away
			if weapon := assign[SlotWeapon]; weapon != nil && weapon.TwoHanded {
				continue
			}
		}

		current := assign[slot]
		currentScore := Score(current, req)
		currentPrice := effectivePrice(current, unlocked)

		for _, cand := range candidates[slot] {
			if current != nil && cand.item.ID == current.ID {
				continue
			}

			scoreDelta := cand.score - currentScore
			costDelta := cand.price - currentPrice

			// a two-handed weapon displaces any equipped shield: give its
			// price back and charge its score against the swap
			if slot == SlotWeapon && cand.item.TwoHanded {
				if shield := assign[SlotShield]; shield != nil {
					scoreDelta -= Score(shield, req)
					costDelta -= effectivePrice(shield, unlocked)
				}
			}

			if scoreDelta <= 0 {
				continue
			}
			if costDelta > remaining {
				continue
			}

			efficiency := math.Inf(1)
			if costDelta > 0 {
				efficiency = scoreDelta / float64(costDelta)
			}

			if !found || efficiency > best.efficiency ||
				(efficiency == best.efficiency && scoreDelta > best.scoreDelta) {
				best = upgrade{item: cand.item, scoreDelta: scoreDelta, costDelta: costDelta, efficiency: efficiency}
				found = true
			}
		}
	}

	return best, found
}

func effectivePrice(item *Item, unlocked map[int]bool) int {
	if item == nil || unlocked[item.ID] || item.Price == nil {
		return 0
	}
	return *item.Price
}

func meetsRequirements(item *Item, stats *hiscores.Stats) bool {
	for skill, minLevel := range item.Requirements {
		if stats.Level(skill) < minLevel {
			return false
		}
	}
	return true
}
