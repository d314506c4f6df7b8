package domain

import "time"

// Message is an inbound inbox item: either a mention (generated when the bot
// account is referenced inside a comment context) or a direct message.
type Message struct {
	ID        string
	Subject   string
	Body      string
	Author    string
	Community string // origin community for mentions, empty for direct messages
	ParentID  string // fullname of the item the mention hangs off
	CreatedAt time.Time
	// WasComment distinguishes a mention from a direct message.
	WasComment bool
}

// IsMention reports whether the message came from a comment context.
func (m *Message) IsMention() bool {
	return m.WasComment
}

// CommandText returns the text the parser should run over: mentions carry
// the command in the body, direct messages in the subject.
func (m *Message) CommandText() string {
	if m.WasComment {
		return m.Body
	}
	return m.Subject
}

// Community is a resolved reference to an existing community. Resolution is
// lazy: a value exists only after the platform's exact-name search confirmed
// it. Downstream code branches on pointer presence, not on name emptiness.
type Community struct {
	DisplayName string
}
