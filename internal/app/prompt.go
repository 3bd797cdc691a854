package app

import (
	"strings"

	"mentorchat/internal/ai"
	"mentorchat/internal/model"
)

const (
	maxExcerptChars       = 12000
	maxNotesInPrompt      = 300
	excerptSeparator      = "\n\n---\n\n"
	attachmentPlaceholder = "[attachment(s) uploaded]"
)

const systemPersona = "You are a mentor-style assistant. Use Greek for prose and keep technical terms in English. " +
	"Write with clear structure using Markdown. Default to short paragraphs with whitespace. " +
	"Use bullet lists when enumerating, tables for comparisons when helpful, and fenced code blocks with language. " +
	"Prefer clarity over verbosity; add small headings if it aids scanning. " +
	"Preserve privacy; avoid storing sensitive data. " +
	"If you are not sure about something ask for more information. " +
	"If the mini model that we use is not capable to solve or explain a problem you should tell me to switch to a more skillful model. " +
	"Explain like you talk to human with explanations not just theory. " +
	"Try to put a tone of humor in your responses. " +
	"Try to notice best practices✅, acceptable but not the perfect thing⚠️, and avoid to do❌. " +
	"Use emojis for more fun conversations. " +
	"Keep answers within 3–5 short paragraphs unless explicitly asked for more. "

// TurnContent is the current turn's payload beyond the persisted plain text:
// inline images and labeled attachment excerpts.
type TurnContent struct {
	Text      string
	ImageURLs []string
	Excerpts  []string
}

func (t TurnContent) hasParts() bool {
	return len(t.ImageURLs) > 0 || len(t.Excerpts) > 0
}

// buildPromptMessages assembles the provider-bound message list: the mentor
// system message with the personalization clause, then the full history in
// creation order. When the turn carries images or excerpts, the trailing
// history entry (the just-persisted plain-text user turn) is replaced by a
// multimodal user message. History itself is never mutated.
func buildPromptMessages(profile *model.Profile, history []model.Message, turn TurnContent) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.TextMessage(model.RoleSystem, systemPersona+profileClause(profile)))

	last := len(history)
	if turn.hasParts() && last > 0 && history[last-1].Role == model.RoleUser {
		last--
	}
	for _, item := range history[:last] {
		role := item.Role
		if role == "" {
			role = model.RoleUser
		}
		messages = append(messages, ai.TextMessage(role, item.Content))
	}

	if turn.hasParts() {
		parts := make([]ai.ContentPart, 0, len(turn.ImageURLs)+2)
		if turn.Text != "" {
			parts = append(parts, ai.TextPart(turn.Text))
		}
		for _, url := range turn.ImageURLs {
			parts = append(parts, ai.ImagePart(url))
		}
		if len(turn.Excerpts) > 0 {
			joined := truncateRunes(strings.Join(turn.Excerpts, excerptSeparator), maxExcerptChars)
			parts = append(parts, ai.TextPart("Attached file excerpts:\n\n"+joined))
		}
		messages = append(messages, ai.PartsMessage(model.RoleUser, parts))
	}
	return messages
}

func profileClause(profile *model.Profile) string {
	name := profile.Name
	if name == "" {
		name = "User"
	}
	tz := profile.Timezone
	if tz == "" {
		tz = model.DefaultTimezone
	}
	tone := profile.Tone
	if tone == "" {
		tone = model.DefaultTone
	}

	clause := "User name: " + name + ". Timezone: " + tz + ". Tone: " + tone + "."
	if profile.Notes != "" {
		clause += " Extra notes: " + truncateRunes(profile.Notes, maxNotesInPrompt)
	}
	return clause
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
