package models

// ConversationID identifies a Telegram chat. Memory and authorization are
// scoped by it.
type ConversationID int64

// SenderID identifies a message author.
type SenderID int64

// ReplyRef describes the message an inbound event replies to.
type ReplyRef struct {
	Author  SenderID
	Text    string
	FromBot bool
}

// InboundEvent is one observed message, already stripped down to what routing
// needs. It is a transient value: built per update, discarded after routing.
type InboundEvent struct {
	Conversation ConversationID
	Sender       SenderID
	Text         string
	RepliedTo    *ReplyRef
}

// PrivilegeTier is the capability class of a sender. It selects both the
// persona and the completion model grade.
type PrivilegeTier int

const (
	TierStandard PrivilegeTier = iota
	TierElevated
)

func (t PrivilegeTier) String() string {
	if t == TierElevated {
		return "elevated"
	}
	return "standard"
}

// Turn is one half of a completed exchange kept in conversation memory.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// OutcomeKind tags the routing decision for an inbound event.
type OutcomeKind int

const (
	OutcomeIgnore OutcomeKind = iota
	OutcomeDirectAsk
	OutcomeContinueFromBotReply
	OutcomeReplyWithKeyword
	OutcomeTranslateToVietnamese
	OutcomeTranslateToEnglish
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDirectAsk:
		return "direct_ask"
	case OutcomeContinueFromBotReply:
		return "continue_from_bot_reply"
	case OutcomeReplyWithKeyword:
		return "reply_with_keyword"
	case OutcomeTranslateToVietnamese:
		return "translate_to_vietnamese"
	case OutcomeTranslateToEnglish:
		return "translate_to_english"
	default:
		return "ignore"
	}
}

// RoutingOutcome is the single classification result for one event. Prompt
// carries the user prompt, or the source text for translation outcomes.
type RoutingOutcome struct {
	Kind   OutcomeKind
	Prompt string
}
