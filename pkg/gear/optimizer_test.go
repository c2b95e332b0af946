package gear

import (
	"context"
	"errors"
	"testing"

	"osrs-toolkit/pkg/combat"
	"osrs-toolkit/pkg/hiscores"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	items []Item
	err   error
}

func (s *stubCatalog) Equipment(ctx context.Context) ([]Item, error) {
	return s.items, s.err
}

func gp(v int) *int { return &v }

func meleeRequest(budget int) Request {
	return Request{
		Style:          combat.StyleMelee,
		AttackType:     combat.AttackSlash,
		Focus:          FocusOffense,
		BudgetGP:       budget,
		MembersAllowed: true,
	}
}

func optimize(t *testing.T, items []Item, req Request) *Loadout {
	t.Helper()
	opt := NewOptimizer(&stubCatalog{items: items}, nil)
	loadout, err := opt.Optimize(context.Background(), req)
	require.NoError(t, err)
	return loadout
}

func TestOptimizeStaysWithinBudget(t *testing.T) {
	items := []Item{
		{ID: 1, Name: "Rune platebody", Slot: SlotBody, Tradeable: true, Price: gp(38_000), Stats: Stats{MeleeStrength: 0, AttackSlash: 0, DefenceSlash: 80}},
		{ID: 2, Name: "Berserker ring", Slot: SlotRing, Tradeable: true, Price: gp(2_500_000), Stats: Stats{MeleeStrength: 4}},
		{ID: 3, Name: "Amulet of strength", Slot: SlotNeck, Tradeable: true, Price: gp(15_000), Stats: Stats{MeleeStrength: 10}},
		{ID: 4, Name: "Dragon scimitar", Slot: SlotWeapon, Tradeable: true, Price: gp(59_000), Stats: Stats{MeleeStrength: 66, AttackSlash: 67}},
		{ID: 5, Name: "Climbing boots", Slot: SlotFeet, Tradeable: true, Price: gp(40_000), Stats: Stats{MeleeStrength: 2}},
	}

	for _, budget := range []int{0, 10_000, 60_000, 100_000, 5_000_000} {
		loadout := optimize(t, items, meleeRequest(budget))
		assert.LessOrEqual(t, loadout.TotalCost, budget, "budget %d", budget)
		assert.Equal(t, budget-loadout.TotalCost, loadout.RemainingBudget, "budget %d", budget)
	}
}

func TestOptimizeZeroBudgetReturnsEmptyLoadout(t *testing.T) {
	items := []Item{
		{ID: 1, Name: "Amulet of strength", Slot: SlotNeck, Tradeable: true, Price: gp(15_000), Stats: Stats{MeleeStrength: 10}},
		{ID: 2, Name: "Dragon scimitar", Slot: SlotWeapon, Tradeable: true, Price: gp(59_000), Stats: Stats{MeleeStrength: 66}},
	}

	loadout := optimize(t, items, meleeRequest(0))

	for _, slot := range Slots {
		assert.Nil(t, loadout.Items[slot], "slot %s should be empty", slot)
	}
	assert.Equal(t, 0, loadout.TotalCost)
	assert.Equal(t, 0, loadout.RemainingBudget)
}

func TestOptimizeRejectsNegativeBudget(t *testing.T) {
	opt := NewOptimizer(&stubCatalog{}, nil)
	_, err := opt.Optimize(context.Background(), meleeRequest(-1))
	assert.ErrorIs(t, err, ErrInvalidBudget)
}

func TestOptimizeSurfacesCatalogFailure(t *testing.T) {
	opt := NewOptimizer(&stubCatalog{err: errors.New("timeout")}, nil)
	_, err := opt.Optimize(context.Background(), meleeRequest(1000))
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestTwoHandedSwapUnequipsShieldWithRefund(t *testing.T) {
	// the shield goes on first (best efficiency), then a one-hander, and
	// finally the two-hander wins only because the swap nets the shield's
	// score against its refunded price
	items := []Item{
		{ID: 1, Name: "Toktz-ket-xil", Slot: SlotShield, Tradeable: true, Price: gp(10), Stats: Stats{MeleeStrength: 5, AttackSlash: 10}},
		{ID: 2, Name: "Brine sabre", Slot: SlotWeapon, Tradeable: true, Price: gp(30), Stats: Stats{MeleeStrength: 5}},
		{ID: 3, Name: "Godsword", Slot: SlotWeapon, TwoHanded: true, Tradeable: true, Price: gp(120), Stats: Stats{MeleeStrength: 15}},
	}

	loadout := optimize(t, items, meleeRequest(150))

	require.NotNil(t, loadout.Items[SlotWeapon])
	assert.Equal(t, 3, loadout.Items[SlotWeapon].ID, "two-hander should win the weapon slot")
	assert.Nil(t, loadout.Items[SlotShield], "shield must be unequipped by the two-handed swap")
	assert.Equal(t, 120, loadout.TotalCost, "shield price must be refunded, not double-counted")
	assert.Equal(t, 30, loadout.RemainingBudget)
}

func TestShieldSlotSkippedWhileTwoHanderEquipped(t *testing.T) {
	// the two-hander alone outscores any weapon+shield pair, so once it is
	// equipped the shield must never come back
	items := []Item{
		{ID: 1, Name: "Godsword", Slot: SlotWeapon, TwoHanded: true, Tradeable: true, Price: gp(100), Stats: Stats{MeleeStrength: 100}},
		{ID: 2, Name: "Dragon defender", Slot: SlotShield, Tradeable: true, Price: gp(1), Stats: Stats{MeleeStrength: 6}},
	}

	loadout := optimize(t, items, meleeRequest(1000))

	require.NotNil(t, loadout.Items[SlotWeapon])
	assert.True(t, loadout.Items[SlotWeapon].TwoHanded)
	assert.Nil(t, loadout.Items[SlotShield])
}

func TestGreedyUpgradesStrictlyImproveScore(t *testing.T) {
	items := []Item{
		{ID: 1, Name: "Iron scimitar", Slot: SlotWeapon, Tradeable: true, Price: gp(100), Stats: Stats{MeleeStrength: 9}},
		{ID: 2, Name: "Rune scimitar", Slot: SlotWeapon, Tradeable: true, Price: gp(15_000), Stats: Stats{MeleeStrength: 44}},
		{ID: 3, Name: "Amulet of power", Slot: SlotNeck, Tradeable: true, Price: gp(3_000), Stats: Stats{MeleeStrength: 6}},
		{ID: 4, Name: "Obsidian cape", Slot: SlotCape, Tradeable: true, Price: gp(70_000), Stats: Stats{MeleeStrength: 0, DefenceSlash: 9}},
	}
	req := meleeRequest(100_000)

	// replay the greedy loop by hand and check every accepted step
	opt := NewOptimizer(&stubCatalog{items: items}, nil)
	catalog, err := opt.source.Equipment(context.Background())
	require.NoError(t, err)

	unlocked := req.unlockedSet()
	candidates := opt.buildCandidates(catalog, req, unlocked)
	assign := NewAssignment()
	remaining := req.BudgetGP

	totalScore := func() float64 {
		var sum float64
		for _, slot := range Slots {
			sum += Score(assign[slot], req)
		}
		return sum
	}

	for {
		before := totalScore()
		best, found := bestUpgrade(assign, candidates, remaining, unlocked, req)
		if !found {
			break
		}
		assert.Greater(t, best.scoreDelta, 0.0)
		assign.Equip(best.item)
		remaining -= best.costDelta
		assert.Greater(t, totalScore(), before, "each accepted upgrade must raise the total score")
		assert.GreaterOrEqual(t, remaining, 0)
	}
}

func TestFreeUnlockedUpgradeBeatsPaidOne(t *testing.T) {
	// the unlocked untradeable beats a cheap paid item of equal score
	items := []Item{
		{ID: 1, Name: "Fire cape", Slot: SlotCape, Tradeable: false, Stats: Stats{MeleeStrength: 4}},
		{ID: 2, Name: "Obsidian cape", Slot: SlotCape, Tradeable: true, Price: gp(500), Stats: Stats{MeleeStrength: 4}},
	}
	req := meleeRequest(10_000)
	req.Unlocked = []int{1}

	loadout := optimize(t, items, req)

	require.NotNil(t, loadout.Items[SlotCape])
	assert.Equal(t, 1, loadout.Items[SlotCape].ID)
	assert.Equal(t, 0, loadout.TotalCost, "unlocked items cost nothing")
}

func TestUntradeableExcludedUnlessUnlocked(t *testing.T) {
	items := []Item{
		{ID: 1, Name: "Fire cape", Slot: SlotCape, Tradeable: false, Stats: Stats{MeleeStrength: 4}},
	}

	locked := optimize(t, items, meleeRequest(10_000))
	assert.Nil(t, locked.Items[SlotCape])

	req := meleeRequest(10_000)
	req.Unlocked = []int{1}
	unlocked := optimize(t, items, req)
	require.NotNil(t, unlocked.Items[SlotCape])
}

func TestMembersItemsExcludedForF2P(t *testing.T) {
	items := []Item{
		{ID: 1, Name: "Dragon scimitar", Slot: SlotWeapon, Members: true, Tradeable: true, Price: gp(59_000), Stats: Stats{MeleeStrength: 66}},
		{ID: 2, Name: "Rune scimitar", Slot: SlotWeapon, Tradeable: true, Price: gp(15_000), Stats: Stats{MeleeStrength: 44}},
	}

	req := meleeRequest(100_000)
	req.MembersAllowed = false
	loadout := optimize(t, items, req)

	require.NotNil(t, loadout.Items[SlotWeapon])
	assert.Equal(t, 2, loadout.Items[SlotWeapon].ID)
}

func TestSkillRequirementGating(t *testing.T) {
	items := []Item{
		{ID: 1, Name: "Dragon scimitar", Slot: SlotWeapon, Tradeable: true, Price: gp(59_000),
			Requirements: map[string]int{"attack": 60}, Stats: Stats{MeleeStrength: 66}},
		{ID: 2, Name: "Rune scimitar", Slot: SlotWeapon, Tradeable: true, Price: gp(15_000),
			Requirements: map[string]int{"attack": 40}, Stats: Stats{MeleeStrength: 44}},
	}

	lowStats := &hiscores.Stats{Skills: map[string]hiscores.Skill{"attack": {Level: 50}}}

	req := meleeRequest(100_000)
	req.Stats = lowStats
	loadout := optimize(t, items, req)
	require.NotNil(t, loadout.Items[SlotWeapon])
	assert.Equal(t, 2, loadout.Items[SlotWeapon].ID, "attack 50 cannot wield the dragon scimitar")

	// without stats the gate is skipped entirely
	noStats := optimize(t, items, meleeRequest(100_000))
	assert.Equal(t, 1, noStats.Items[SlotWeapon].ID)
}

func TestMaxHitUsesPlayerLevelWhenPresent(t *testing.T) {
	items := []Item{
		{ID: 1, Name: "Dragon scimitar", Slot: SlotWeapon, Tradeable: true, Price: gp(59_000), Stats: Stats{MeleeStrength: 66}},
	}

	defaulted := optimize(t, items, meleeRequest(100_000))
	assert.Equal(t, combat.MeleeMaxHit(99, 66), defaulted.MaxHit)

	req := meleeRequest(100_000)
	req.Stats = &hiscores.Stats{Skills: map[string]hiscores.Skill{"strength": {Level: 70}}}
	personalized := optimize(t, items, req)
	assert.Equal(t, combat.MeleeMaxHit(70, 66), personalized.MaxHit)
}

func TestEmptyCatalogYieldsEmptyLoadout(t *testing.T) {
	loadout := optimize(t, nil, meleeRequest(1_000_000))
	assert.Equal(t, 0, loadout.TotalCost)
	assert.Equal(t, Stats{}, loadout.TotalStats)
}
