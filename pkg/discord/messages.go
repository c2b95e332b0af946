package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Discord rejects messages over 2000 characters. We split below that to
// leave room for code block fences added around chunks.
const (
	maxMessageLength = 2000
	chunkSize        = 1900
)

// SendMessage sends a text message to the configured channel, splitting
// long content into multiple messages
func (b *Bot) SendMessage(content string) (*discordgo.Message, error) {
	if !b.IsReady() {
		return nil, fmt.Errorf("discord bot is not ready")
	}

	if len(content) <= maxMessageLength {
		msg, err := b.session.ChannelMessageSend(b.channelID, content)
		if err != nil {
			b.logger.DiscordError("send_message", err)
			return nil, fmt.Errorf("failed to send Discord message: %w", err)
		}
		return msg, nil
	}

	return b.sendLongMessage(content)
}

func (b *Bot) sendLongMessage(content string) (*discordgo.Message, error) {
	chunks := splitMessage(content, chunkSize)

	var firstMsg *discordgo.Message
	for i, chunk := range chunks {
		if len(chunks) > 1 {
			chunk = fmt.Sprintf("(%d/%d)\n%s", i+1, len(chunks), chunk)
		}
		msg, err := b.session.ChannelMessageSend(b.channelID, chunk)
		if err != nil {
			b.logger.DiscordError("send_long_message", err)
			return firstMsg, fmt.Errorf("failed to send message chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if firstMsg == nil {
			firstMsg = msg
		}
	}
	return firstMsg, nil
}

// SendEmbed sends an embed message to the configured channel
func (b *Bot) SendEmbed(embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	if !b.IsReady() {
		return nil, fmt.Errorf("discord bot is not ready")
	}

	msg, err := b.session.ChannelMessageSendEmbed(b.channelID, embed)
	if err != nil {
		b.logger.DiscordError("send_embed", err)
		return nil, fmt.Errorf("failed to send Discord embed: %w", err)
	}
	return msg, nil
}

// splitMessage breaks content into chunks no longer than max, preferring
// newline boundaries so tables are not cut mid-row. Open code fences are
// closed at the end of a chunk and reopened at the start of the next.
func splitMessage(content string, max int) []string {
	if len(content) <= max {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	inCodeBlock := false

	flush := func() {
		chunk := current.String()
		if inCodeBlock {
			chunk += "\n```"
		}
		chunks = append(chunks, chunk)
		current.Reset()
		if inCodeBlock {
			current.WriteString("```\n")
		}
	}

	for _, line := range strings.Split(content, "\n") {
		// a single oversized line gets hard-cut
		for len(line) > max-8 {
			if current.Len() > 0 {
				flush()
			}
			current.WriteString(line[:max-8])
			flush()
			line = line[max-8:]
		}

		if current.Len()+len(line)+1 > max-8 {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)

		if strings.Count(line, "```")%2 == 1 {
			inCodeBlock = !inCodeBlock
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
