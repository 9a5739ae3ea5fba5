package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kakaalameda/telegram-rolebot/internal/models"
)

// rule is one pattern test of the classifier. Rules are evaluated in order
// and the first match wins, so priority lives in the slice, not in control
// flow.
type rule struct {
	name  string
	match func(ev models.InboundEvent) (models.RoutingOutcome, bool)
}

// Classifier maps an inbound event to exactly one routing outcome.
type Classifier struct {
	rules []rule
}

func NewClassifier(cfg Config) *Classifier {
	marker := cfg.CommandMarker
	wake := cfg.WakeKeyword
	toVi := cfg.TranslateViKeyword
	toEn := cfg.TranslateEnKeyword

	return &Classifier{rules: []rule{
		{
			name: "command",
			match: func(ev models.InboundEvent) (models.RoutingOutcome, bool) {
				rest, _, ok := matchKeyword(ev.Text, marker)
				if !ok {
					return models.RoutingOutcome{}, false
				}
				// Telegram appends @botname to commands in groups.
				rest = stripMention(rest)
				return models.RoutingOutcome{Kind: models.OutcomeDirectAsk, Prompt: rest}, true
			},
		},
		{
			name: "bot_reply_continuation",
			match: func(ev models.InboundEvent) (models.RoutingOutcome, bool) {
				if ev.RepliedTo == nil || !ev.RepliedTo.FromBot {
					return models.RoutingOutcome{}, false
				}
				return models.RoutingOutcome{Kind: models.OutcomeContinueFromBotReply, Prompt: strings.TrimSpace(ev.Text)}, true
			},
		},
		{
			name: "translate_vi",
			match: func(ev models.InboundEvent) (models.RoutingOutcome, bool) {
				if ev.RepliedTo == nil || ev.RepliedTo.FromBot || !equalsKeyword(ev.Text, toVi) {
					return models.RoutingOutcome{}, false
				}
				return models.RoutingOutcome{Kind: models.OutcomeTranslateToVietnamese, Prompt: ev.RepliedTo.Text}, true
			},
		},
		{
			name: "translate_en",
			match: func(ev models.InboundEvent) (models.RoutingOutcome, bool) {
				if ev.RepliedTo == nil || ev.RepliedTo.FromBot || !equalsKeyword(ev.Text, toEn) {
					return models.RoutingOutcome{}, false
				}
				return models.RoutingOutcome{Kind: models.OutcomeTranslateToEnglish, Prompt: ev.RepliedTo.Text}, true
			},
		},
		{
			name: "reply_keyword",
			match: func(ev models.InboundEvent) (models.RoutingOutcome, bool) {
				if ev.RepliedTo == nil || ev.RepliedTo.FromBot {
					return models.RoutingOutcome{}, false
				}
				rest, _, ok := matchKeyword(ev.Text, wake)
				if !ok {
					return models.RoutingOutcome{}, false
				}
				// Bare keyword asks about the replied-to text; anything
				// after the keyword is its own prompt.
				prompt := rest
				if prompt == "" {
					prompt = ev.RepliedTo.Text
				}
				return models.RoutingOutcome{Kind: models.OutcomeReplyWithKeyword, Prompt: prompt}, true
			},
		},
		{
			name: "wake_keyword",
			match: func(ev models.InboundEvent) (models.RoutingOutcome, bool) {
				if ev.RepliedTo != nil {
					return models.RoutingOutcome{}, false
				}
				rest, sep, ok := matchKeyword(ev.Text, wake)
				if !ok || !sep {
					return models.RoutingOutcome{}, false
				}
				return models.RoutingOutcome{Kind: models.OutcomeDirectAsk, Prompt: rest}, true
			},
		},
	}}
}

// Classify runs the rule table in order. Events matching no rule are ignored.
func (c *Classifier) Classify(ev models.InboundEvent) models.RoutingOutcome {
	for _, r := range c.rules {
		if outcome, ok := r.match(ev); ok {
			return outcome
		}
	}
	return models.RoutingOutcome{Kind: models.OutcomeIgnore}
}

// matchKeyword reports whether text starts with keyword as a whole leading
// token, comparing the keyword case-insensitively. sep is true when a
// separator rune followed the keyword; rest is the trimmed remainder with
// its original casing.
func matchKeyword(text, keyword string) (rest string, sep, ok bool) {
	if keyword == "" {
		return "", false, false
	}
	t := strings.TrimLeftFunc(text, unicode.IsSpace)
	if len(t) < len(keyword) || !strings.EqualFold(t[:len(keyword)], keyword) {
		return "", false, false
	}
	tail := t[len(keyword):]
	if tail == "" {
		return "", false, true
	}
	r, _ := utf8.DecodeRuneInString(tail)
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		// Keyword embedded in a longer word is not a trigger.
		return "", false, false
	}
	return strings.TrimSpace(tail), true, true
}

// equalsKeyword reports whether text is exactly the keyword, ignoring case
// and surrounding whitespace.
func equalsKeyword(text, keyword string) bool {
	return keyword != "" && strings.EqualFold(strings.TrimSpace(text), keyword)
}

func stripMention(rest string) string {
	if !strings.HasPrefix(rest, "@") {
		return rest
	}
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		return strings.TrimSpace(rest[i:])
	}
	return ""
}
