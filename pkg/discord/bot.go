package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"osrs-toolkit/pkg/config"
	"osrs-toolkit/pkg/gear"
	"osrs-toolkit/pkg/hiscores"
	"osrs-toolkit/pkg/logging"
	"osrs-toolkit/pkg/market"
	"osrs-toolkit/pkg/report"

	"github.com/bwmarrin/discordgo"
)

// Bot is the Discord delivery surface: it posts scheduled reports to the
// configured channel and answers on-demand !ge commands.
type Bot struct {
	session   *discordgo.Session
	config    *config.DiscordConfig
	logger    *logging.Logger
	channelID string

	analyzer  *market.Analyzer
	optimizer *gear.Optimizer
	hiscores  *hiscores.Client
	formatter *report.Formatter

	mu               sync.RWMutex
	ready            bool
	startedAt        time.Time
	commandsReceived int64
}

// NewBot creates a new Discord bot instance
func NewBot(cfg *config.DiscordConfig, logger *logging.Logger, analyzer *market.Analyzer, optimizer *gear.Optimizer, hiscoresClient *hiscores.Client) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:   session,
		config:    cfg,
		logger:    logger,
		channelID: cfg.ChannelID,
		analyzer:  analyzer,
		optimizer: optimizer,
		hiscores:  hiscoresClient,
		formatter: report.NewFormatter(),
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	return bot, nil
}

// Start opens the session and waits for the ready event
func (b *Bot) Start(ctx context.Context) error {
	b.logger.WithDiscord().Info("Starting Discord bot")

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.After(30 * time.Second)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for Discord bot to be ready")
		case <-ticker.C:
			b.mu.RLock()
			ready := b.ready
			b.mu.RUnlock()
			if ready {
				b.logger.WithDiscord().Info("Discord bot is ready and connected")
				return nil
			}
		}
	}
}

// Stop closes the Discord session
func (b *Bot) Stop() error {
	b.logger.WithDiscord().Info("Stopping Discord bot")
	return b.session.Close()
}

// IsReady returns whether the bot can send messages
func (b *Bot) IsReady() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ready
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.mu.Lock()
	b.ready = true
	b.startedAt = time.Now()
	b.mu.Unlock()

	b.logger.WithDiscord().WithFields(map[string]interface{}{
		"bot_user_id": event.User.ID,
		"guild_count": len(event.Guilds),
	}).Info("Discord bot ready")

	if err := s.UpdateGameStatus(0, "Grand Exchange prices"); err != nil {
		b.logger.WithDiscord().WithError(err).Warn("Failed to set bot status")
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if m.ChannelID != b.channelID {
		return
	}

	if strings.HasPrefix(m.Content, "!ge") {
		// handled off the event loop; a slow feed must not block Discord
		go b.handleCommand(s, m)
	}
}

// SendResult posts a formatted report result to the configured channel
func (b *Bot) SendResult(result *report.Result) error {
	if !result.Success {
		return b.SendError(result.JobName, result.Error)
	}
	_, err := b.SendMessage(b.formatter.FormatForDiscord(result))
	return err
}

// SendError posts a job failure notice to the configured channel
func (b *Bot) SendError(jobName string, jobErr error) error {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Job failed: %s", jobName),
		Description: fmt.Sprintf("```\n%s\n```", jobErr.Error()),
		Color:       0xff0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	_, err := b.SendEmbed(embed)
	return err
}
