package model

// TelegramTopicBinding is the orchestrator's half of an optional Telegram
// notification integration: it owns and persists the configuration, and
// bumps ConfigRev whenever it changes, but never talks to the Telegram Bot
// API itself. An external notifier collaborator polls ConfigRev and does
// the actual network calls.
type TelegramTopicBinding struct {
	Enabled       bool              `json:"enabled"`
	BotTokenSet   bool              `json:"bot_token_set"`
	botToken      string            // never serialized; redacted to BotTokenSet above
	BotUsername   string            `json:"bot_username,omitempty"`
	PairedChatID  *int64            `json:"paired_chat_id,omitempty"`
	ConfigRev     uint64            `json:"config_rev"`
	LastError     string            `json:"last_error,omitempty"`
	TopicBindings map[WorkspaceID]int64 `json:"topic_bindings"`
}

// SetBotToken stores the bot token out of band from JSON serialization and
// updates the redacted is-set flag clients observe in AppChanged snapshots.
func (t *TelegramTopicBinding) SetBotToken(token string) {
	t.botToken = token
	t.BotTokenSet = token != ""
}

// BotToken returns the stored token for use by the (external) notifier
// wiring; it is never included in a serialized snapshot.
func (t TelegramTopicBinding) BotToken() string {
	return t.botToken
}

func (t TelegramTopicBinding) Clone() TelegramTopicBinding {
	cp := t
	if t.PairedChatID != nil {
		v := *t.PairedChatID
		cp.PairedChatID = &v
	}
	if t.TopicBindings != nil {
		cp.TopicBindings = make(map[WorkspaceID]int64, len(t.TopicBindings))
		for k, v := range t.TopicBindings {
			cp.TopicBindings[k] = v
		}
	}
	return cp
}
