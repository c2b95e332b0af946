package hiscores

import (
	"fmt"
	"strconv"
	"strings"
)

// skillOrder is the fixed line order of the hiscores lite response.
// The first line is the overall total; skill lines follow in this order.
var skillOrder = []string{
	"overall",
	"attack",
	"defence",
	"strength",
	"hitpoints",
	"ranged",
	"prayer",
	"magic",
	"cooking",
	"woodcutting",
	"fletching",
	"fishing",
	"firemaking",
	"crafting",
	"smithing",
	"mining",
	"herblore",
	"agility",
	"thieving",
	"slayer",
	"farming",
	"runecraft",
	"hunter",
	"construction",
}

// Skill is one rank,level,xp record from the lite response.
// Unranked skills carry rank -1 and xp -1.
type Skill struct {
	Rank  int
	Level int
	XP    int64
}

// Stats is a player's parsed hiscores record
type Stats struct {
	Player string
	Skills map[string]Skill
}

// Level returns the player's level in the named skill (case-insensitive).
// Unknown skill names return 1, the game's minimum level.
func (s *Stats) Level(skill string) int {
	if s == nil {
		return 1
	}
	if sk, ok := s.Skills[strings.ToLower(skill)]; ok {
		return sk.Level
	}
	return 1
}

// CombatRelevant returns the levels the optimizer cares about
func (s *Stats) CombatRelevant() map[string]int {
	out := make(map[string]int, 6)
	for _, name := range []string{"attack", "strength", "defence", "ranged", "magic", "hitpoints"} {
		out[name] = s.Level(name)
	}
	return out
}

// ParseLite parses the index_lite.ws CSV body: one "rank,level,xp" line per
// skill in the fixed order above, followed by activity lines we ignore.
func ParseLite(body string) (*Stats, error) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) < len(skillOrder) {
		return nil, fmt.Errorf("expected at least %d lines, got %d", len(skillOrder), len(lines))
	}

	stats := &Stats{Skills: make(map[string]Skill, len(skillOrder))}
	for i, name := range skillOrder {
		fields := strings.Split(strings.TrimSpace(lines[i]), ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected rank,level,xp, got %q", i+1, lines[i])
		}

		rank, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing rank: %w", i+1, err)
		}
		level, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing level: %w", i+1, err)
		}
		xp, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing xp: %w", i+1, err)
		}

		stats.Skills[name] = Skill{Rank: rank, Level: level, XP: xp}
	}

	return stats, nil
}
