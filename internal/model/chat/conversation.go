package chat

import (
	"errors"
	"strings"
	"time"
)

// WelcomeID is the id of the greeting every conversation starts with.
const WelcomeID = "welcome"

// defaultIDs serves conversations built without NewConversation.
var defaultIDs = NewIDSource()

var (
	ErrBlankInput = errors.New("message text is blank")
	ErrBusy       = errors.New("a message is already being sent")
	ErrNotLoading = errors.New("no message is awaiting a reply")
)

// Conversation is the state owned by one chat session. It is a value: every
// transition returns a new Conversation and leaves the receiver untouched.
type Conversation struct {
	Messages  []Message `json:"messages"`
	IsLoading bool      `json:"isLoading"`

	ids *IDSource
	now func() time.Time
}

// NewConversation starts a thread containing only the welcome message.
func NewConversation(welcome string) Conversation {
	return NewConversationWithClock(welcome, NewIDSource(), time.Now)
}

// NewConversationWithClock is NewConversation with an injectable id source and
// clock.
func NewConversationWithClock(welcome string, ids *IDSource, now func() time.Time) Conversation {
	return Conversation{
		Messages: []Message{{
			ID:        WelcomeID,
			Text:      welcome,
			IsBot:     true,
			Timestamp: now(),
		}},
		ids: ids,
		now: now,
	}
}

// Begin appends the user's message and marks the conversation as loading.
// Blank input and a conversation that is already loading are rejected without
// any change.
func (c Conversation) Begin(text string) (Conversation, Message, error) {
	if strings.TrimSpace(text) == "" {
		return c, Message{}, ErrBlankInput
	}
	if c.IsLoading {
		return c, Message{}, ErrBusy
	}

	msg := c.newMessage(text, false)
	next := c.with(msg)
	next.IsLoading = true
	return next, msg, nil
}

// Complete appends the bot's message and clears the loading flag.
func (c Conversation) Complete(text string) (Conversation, Message, error) {
	if !c.IsLoading {
		return c, Message{}, ErrNotLoading
	}

	msg := c.newMessage(text, true)
	next := c.with(msg)
	next.IsLoading = false
	return next, msg, nil
}

// Last returns the most recent message.
func (c Conversation) Last() Message {
	return c.Messages[len(c.Messages)-1]
}

// Clone returns a copy that shares no backing array with c.
func (c Conversation) Clone() Conversation {
	copied := c
	copied.Messages = make([]Message, len(c.Messages))
	copy(copied.Messages, c.Messages)
	return copied
}

func (c Conversation) with(msg Message) Conversation {
	next := c
	next.Messages = make([]Message, len(c.Messages), len(c.Messages)+1)
	copy(next.Messages, c.Messages)
	next.Messages = append(next.Messages, msg)
	return next
}

func (c Conversation) newMessage(text string, isBot bool) Message {
	ids := c.ids
	if ids == nil {
		ids = defaultIDs
	}
	now := c.now
	if now == nil {
		now = time.Now
	}
	return Message{
		ID:        ids.Next(),
		Text:      text,
		IsBot:     isBot,
		Timestamp: now(),
	}
}
