package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/medassist/medchat/internal/metrics"
	"github.com/medassist/medchat/internal/model/chat"
	"github.com/medassist/medchat/internal/service/transport"
)

// EventType names a controller state change.
type EventType string

const (
	EventMessage EventType = "message"
	EventStatus  EventType = "status"
)

// Event is delivered to observers after every state change.
type Event struct {
	Type      EventType     `json:"type"`
	Message   *chat.Message `json:"message,omitempty"`
	IsLoading bool          `json:"isLoading"`
}

// Observer receives controller events. It runs while the controller lock is
// held and must not call back into Send.
type Observer func(Event)

// Controller owns one conversation and sequences sends against it.
type Controller struct {
	mu        sync.Mutex
	conv      chat.Conversation
	sender    transport.Sender
	errorText string

	nextObserver int
	observers    map[int]Observer
}

// NewController wraps conv. errorText is the message shown when delivery
// fails.
func NewController(conv chat.Conversation, sender transport.Sender, errorText string) *Controller {
	return &Controller{
		conv:      conv,
		sender:    sender,
		errorText: errorText,
		observers: make(map[int]Observer),
	}
}

// Snapshot returns a copy of the current conversation.
func (c *Controller) Snapshot() chat.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Clone()
}

// IsLoading reports whether a send is in flight.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.IsLoading
}

// Subscribe registers fn and returns a function that removes it.
func (c *Controller) Subscribe(fn Observer) func() {
	c.mu.Lock()
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Watch streams events into a buffered channel until ctx is done. The
// channel is never closed; callers must keep reading until they cancel ctx,
// otherwise the controller blocks on a full buffer.
func (c *Controller) Watch(ctx context.Context, buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	cancel := c.Subscribe(func(ev Event) {
		select {
		case ch <- ev:
		case <-ctx.Done():
		}
	})
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch
}

// Send delivers text and blocks until the reply or the error message has
// been appended. It returns false without touching the conversation when the
// input is blank or another send is still running.
func (c *Controller) Send(ctx context.Context, text string) bool {
	return c.TrySend(ctx, text) == nil
}

// TrySend is Send reporting why a message was not accepted.
func (c *Controller) TrySend(ctx context.Context, text string) error {
	c.mu.Lock()
	pending, userMsg, err := c.conv.Begin(text)
	if err != nil {
		c.mu.Unlock()
		switch {
		case errors.Is(err, chat.ErrBlankInput):
			metrics.RejectSend("blank")
		case errors.Is(err, chat.ErrBusy):
			metrics.RejectSend("busy")
		}
		return err
	}
	c.conv = pending
	c.notify(Event{Type: EventMessage, Message: &userMsg, IsLoading: false})
	c.notify(Event{Type: EventStatus, IsLoading: true})
	c.mu.Unlock()

	reply := replyText(c.sender.Send(ctx, text), c.errorText)

	c.mu.Lock()
	defer c.mu.Unlock()
	done, botMsg, err := c.conv.Complete(reply)
	if err != nil {
		return err
	}
	c.conv = done
	c.notify(Event{Type: EventMessage, Message: &botMsg, IsLoading: true})
	c.notify(Event{Type: EventStatus, IsLoading: false})
	return nil
}

func (c *Controller) notify(ev Event) {
	for _, fn := range c.observers {
		fn(ev)
	}
}
