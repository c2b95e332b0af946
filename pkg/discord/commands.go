package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"osrs-toolkit/pkg/combat"
	"osrs-toolkit/pkg/gear"
	"osrs-toolkit/pkg/market"
	"osrs-toolkit/pkg/report"

	"github.com/bwmarrin/discordgo"
)

// commandTimeout bounds one command round trip, feed fetches included
const commandTimeout = 2 * time.Minute

func (b *Bot) handleCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithDiscord().WithField("panic", r).Error("Command handler panicked")
			b.sendCommandError(fmt.Errorf("internal error handling command"))
		}
	}()

	b.mu.Lock()
	b.commandsReceived++
	b.mu.Unlock()

	fields := strings.Fields(m.Content)
	command := ""
	args := []string{}
	if len(fields) > 1 {
		command = strings.ToLower(fields[1])
		args = fields[2:]
	}

	b.logger.WithDiscord().WithFields(map[string]interface{}{
		"command": command,
		"user_id": m.Author.ID,
	}).Info("Processing command")

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch command {
	case "flips":
		err = b.handleScan(ctx, market.StrategyFlip, args)
	case "alch":
		err = b.handleScan(ctx, market.StrategyAlch, args)
	case "bis":
		err = b.handleBis(ctx, args)
	case "player":
		err = b.handlePlayer(ctx, args)
	case "status":
		err = b.handleStatus()
	case "ping":
		_, err = b.SendMessage("pong")
	case "help", "":
		err = b.handleHelp()
	default:
		_, err = b.SendMessage(fmt.Sprintf("Unknown command `%s`. Try `!ge help`.", command))
	}

	if err != nil {
		b.logger.WithDiscord().WithField("command", command).WithError(err).Error("Command failed")
		b.sendCommandError(err)
	}
}

func (b *Bot) handleScan(ctx context.Context, strategy market.Strategy, args []string) error {
	settings := market.Settings{
		Strategy:    strategy,
		Risk:        market.RiskMedium,
		Membership:  market.MembershipAll,
		ResultCount: 10,
	}

	if len(args) > 0 {
		budget, err := parseGP(args[0])
		if err != nil {
			_, sendErr := b.SendMessage(fmt.Sprintf("Bad budget %q. Try `!ge %s 10m`.", args[0], strategy))
			return sendErr
		}
		settings.BudgetGP = budget
	}

	result, err := b.analyzer.Analyze(ctx, settings)
	if err != nil {
		return fmt.Errorf("analyzing market: %w", err)
	}

	var reply strings.Builder
	reply.WriteString(fmt.Sprintf("**%s** - %s\n", strategy, result.Summary))
	reply.WriteString("```\n")
	reply.WriteString(b.formatter.FormatRankedList(result))
	reply.WriteString("```")

	_, err = b.SendMessage(reply.String())
	return err
}

func (b *Bot) handleBis(ctx context.Context, args []string) error {
	if len(args) == 0 {
		_, err := b.SendMessage("Usage: `!ge bis <budget> [melee|ranged|magic] [player]`")
		return err
	}

	budget, err := parseGP(args[0])
	if err != nil {
		_, sendErr := b.SendMessage(fmt.Sprintf("Bad budget %q. Try `!ge bis 10m`.", args[0]))
		return sendErr
	}

	req := gear.Request{
		Style:          combat.StyleMelee,
		AttackType:     combat.AttackSlash,
		Focus:          gear.FocusOffense,
		BudgetGP:       budget,
		MembersAllowed: true,
	}

	if len(args) > 1 {
		switch strings.ToLower(args[1]) {
		case "melee":
		case "ranged":
			req.Style = combat.StyleRanged
			req.AttackType = combat.AttackRanged
		case "magic":
			req.Style = combat.StyleMagic
			req.AttackType = combat.AttackMagic
		default:
			_, sendErr := b.SendMessage(fmt.Sprintf("Unknown style %q. Use melee, ranged or magic.", args[1]))
			return sendErr
		}
	}

	if len(args) > 2 {
		player := strings.Join(args[2:], " ")
		stats, err := b.hiscores.LookupOptional(ctx, player)
		if err != nil {
			return fmt.Errorf("looking up player for bis: %w", err)
		}
		if stats == nil {
			b.logger.WithDiscord().WithField("player", player).Warn("Player not on hiscores, assuming maxed levels")
			if _, err := b.SendMessage(fmt.Sprintf("Player `%s` is not on the hiscores, assuming maxed levels.", player)); err != nil {
				return err
			}
		}
		req.Stats = stats
	}

	loadout, err := b.optimizer.Optimize(ctx, req)
	if err != nil {
		return fmt.Errorf("optimizing loadout: %w", err)
	}

	_, err = b.SendMessage(formatLoadout(req, loadout))
	return err
}

func formatLoadout(req gear.Request, loadout *gear.Loadout) string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("**Best %s setup for %s budget**\n", req.Style, report.FormatGP(req.BudgetGP)))
	out.WriteString("```\n")

	for _, slot := range gear.Slots {
		item := loadout.Items[slot]
		if item == nil {
			continue
		}
		price := 0
		if item.Price != nil {
			price = *item.Price
		}
		out.WriteString(fmt.Sprintf("%-8s %-30s %s\n", slot, item.Name, report.FormatGP(price)))
	}

	out.WriteString(fmt.Sprintf("\nTotal cost %s, %s left over. Max hit %d.\n",
		report.FormatGP(loadout.TotalCost), report.FormatGP(loadout.RemainingBudget), loadout.MaxHit))
	out.WriteString("```")
	return out.String()
}

func (b *Bot) handlePlayer(ctx context.Context, args []string) error {
	if len(args) == 0 {
		_, err := b.SendMessage("Usage: `!ge player <name>`")
		return err
	}

	player := strings.Join(args, " ")
	stats, err := b.hiscores.Lookup(ctx, player)
	if err != nil {
		return fmt.Errorf("looking up player: %w", err)
	}

	levels := stats.CombatRelevant()
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Combat stats for %s", stats.Player),
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Attack", Value: strconv.Itoa(levels["attack"]), Inline: true},
			{Name: "Strength", Value: strconv.Itoa(levels["strength"]), Inline: true},
			{Name: "Defence", Value: strconv.Itoa(levels["defence"]), Inline: true},
			{Name: "Ranged", Value: strconv.Itoa(levels["ranged"]), Inline: true},
			{Name: "Magic", Value: strconv.Itoa(levels["magic"]), Inline: true},
			{Name: "Hitpoints", Value: strconv.Itoa(levels["hitpoints"]), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	_, err = b.SendEmbed(embed)
	return err
}

func (b *Bot) handleStatus() error {
	b.mu.RLock()
	uptime := time.Since(b.startedAt).Truncate(time.Second)
	commands := b.commandsReceived
	b.mu.RUnlock()

	embed := &discordgo.MessageEmbed{
		Title: "Bot Status",
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Uptime", Value: uptime.String(), Inline: true},
			{Name: "Commands handled", Value: strconv.FormatInt(commands, 10), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	_, err := b.SendEmbed(embed)
	return err
}

func (b *Bot) handleHelp() error {
	help := strings.Join([]string{
		"**Grand Exchange bot commands**",
		"`!ge flips [budget]` - top flipping opportunities",
		"`!ge alch [budget]` - top high alchemy opportunities",
		"`!ge bis <budget> [style] [player]` - best gear for a budget",
		"`!ge player <name>` - hiscores combat stats",
		"`!ge status` - bot uptime and counters",
		"`!ge ping` - liveness check",
		"",
		"Budgets accept gp shorthand: `250k`, `10m`, `1.5b`.",
	}, "\n")

	_, err := b.SendMessage(help)
	return err
}

func (b *Bot) sendCommandError(cmdErr error) {
	embed := &discordgo.MessageEmbed{
		Title:       "Command failed",
		Description: fmt.Sprintf("```\n%s\n```", cmdErr.Error()),
		Color:       0xff0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if _, err := b.SendEmbed(embed); err != nil {
		b.logger.DiscordError("send_command_error", err)
	}
}

// parseGP parses gp amounts the way players type them: plain integers or
// k/m/b suffixed values, decimals allowed with a suffix.
func parseGP(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	multiplier := 1.0
	switch s[len(s)-1] {
	case 'k':
		multiplier = 1_000
		s = s[:len(s)-1]
	case 'm':
		multiplier = 1_000_000
		s = s[:len(s)-1]
	case 'b':
		multiplier = 1_000_000_000
		s = s[:len(s)-1]
	}

	if multiplier == 1 {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid gp amount %q", s)
		}
		if n < 0 {
			return 0, fmt.Errorf("gp amount must not be negative")
		}
		return n, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid gp amount %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("gp amount must not be negative")
	}
	return int(v * multiplier), nil
}
