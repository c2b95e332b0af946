package gear

import (
	"osrs-toolkit/pkg/combat"
)

// Slot is an equipment slot name
type Slot string

const (
	SlotHead   Slot = "head"
	SlotCape   Slot = "cape"
	SlotNeck   Slot = "neck"
	SlotAmmo   Slot = "ammo"
	SlotWeapon Slot = "weapon"
	SlotShield Slot = "shield"
	SlotBody   Slot = "body"
	SlotLegs   Slot = "legs"
	SlotHands  Slot = "hands"
	SlotFeet   Slot = "feet"
	SlotRing   Slot = "ring"
)

// Slots lists every slot in a stable iteration order
var Slots = []Slot{
	SlotHead, SlotCape, SlotNeck, SlotAmmo, SlotWeapon, SlotShield,
	SlotBody, SlotLegs, SlotHands, SlotFeet, SlotRing,
}

// Stats is the 14-dimensional combat stat vector carried by every item
type Stats struct {
	AttackStab     int     `json:"attack_stab"`
	AttackSlash    int     `json:"attack_slash"`
	AttackCrush    int     `json:"attack_crush"`
	AttackMagic    int     `json:"attack_magic"`
	AttackRanged   int     `json:"attack_ranged"`
	DefenceStab    int     `json:"defence_stab"`
	DefenceSlash   int     `json:"defence_slash"`
	DefenceCrush   int     `json:"defence_crush"`
	DefenceMagic   int     `json:"defence_magic"`
	DefenceRanged  int     `json:"defence_ranged"`
	MeleeStrength  int     `json:"melee_strength"`
	RangedStrength int     `json:"ranged_strength"`
	MagicDamage    float64 `json:"magic_damage"` // percent
	Prayer         int     `json:"prayer"`
}

// Add returns the element-wise sum of two stat vectors
func (s Stats) Add(o Stats) Stats {
	return Stats{
		AttackStab:     s.AttackStab + o.AttackStab,
		AttackSlash:    s.AttackSlash + o.AttackSlash,
		AttackCrush:    s.AttackCrush + o.AttackCrush,
		AttackMagic:    s.AttackMagic + o.AttackMagic,
		AttackRanged:   s.AttackRanged + o.AttackRanged,
		DefenceStab:    s.DefenceStab + o.DefenceStab,
		DefenceSlash:   s.DefenceSlash + o.DefenceSlash,
		DefenceCrush:   s.DefenceCrush + o.DefenceCrush,
		DefenceMagic:   s.DefenceMagic + o.DefenceMagic,
		DefenceRanged:  s.DefenceRanged + o.DefenceRanged,
		MeleeStrength:  s.MeleeStrength + o.MeleeStrength,
		RangedStrength: s.RangedStrength + o.RangedStrength,
		MagicDamage:    s.MagicDamage + o.MagicDamage,
		Prayer:         s.Prayer + o.Prayer,
	}
}

// AttackBonus picks the attack bonus column for an attack type
func (s Stats) AttackBonus(at combat.AttackType) int {
	switch at {
	case combat.AttackStab:
		return s.AttackStab
	case combat.AttackSlash:
		return s.AttackSlash
	case combat.AttackCrush:
		return s.AttackCrush
	case combat.AttackMagic:
		return s.AttackMagic
	case combat.AttackRanged:
		return s.AttackRanged
	default:
		return 0
	}
}

// DefenceBonus picks the defence bonus column for an attack type.
// An unknown type averages all five columns.
func (s Stats) DefenceBonus(at combat.AttackType) int {
	switch at {
	case combat.AttackStab:
		return s.DefenceStab
	case combat.AttackSlash:
		return s.DefenceSlash
	case combat.AttackCrush:
		return s.DefenceCrush
	case combat.AttackMagic:
		return s.DefenceMagic
	case combat.AttackRanged:
		return s.DefenceRanged
	default:
		return (s.DefenceStab + s.DefenceSlash + s.DefenceCrush + s.DefenceMagic + s.DefenceRanged) / 5
	}
}

// Item is one equippable catalog entry
type Item struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Slot         Slot           `json:"slot"`
	TwoHanded    bool           `json:"two_handed"`
	Stats        Stats          `json:"stats"`
	Price        *int           `json:"price"`
	Members      bool           `json:"members"`
	Tradeable    bool           `json:"tradeable"`
	Requirements map[string]int `json:"requirements,omitempty"`
	SpeedTicks   *int           `json:"speed_ticks,omitempty"` // weapons only
}

// Assignment maps each slot to its equipped item, nil meaning empty.
// The two-handed/shield exclusivity invariant is enforced on every
// mutation: equipping either conflicting side clears the other.
type Assignment map[Slot]*Item

// NewAssignment returns an all-empty assignment
func NewAssignment() Assignment {
	return make(Assignment, len(Slots))
}

// Equip places item in its slot. A two-handed weapon clears the shield
// slot; a shield clears a two-handed weapon.
func (a Assignment) Equip(item *Item) {
	if item == nil {
		return
	}
	if item.Slot == SlotWeapon && item.TwoHanded {
		delete(a, SlotShield)
	}
	if item.Slot == SlotShield {
		if weapon := a[SlotWeapon]; weapon != nil && weapon.TwoHanded {
			delete(a, SlotWeapon)
		}
	}
	a[item.Slot] = item
}

// Unequip clears a slot
func (a Assignment) Unequip(slot Slot) {
	delete(a, slot)
}

// Clone returns an independent copy of the assignment
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for slot, item := range a {
		out[slot] = item
	}
	return out
}
