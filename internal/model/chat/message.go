package chat

import "time"

// Message is one entry of the conversation thread. It is never mutated after
// it has been appended.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsBot     bool      `json:"isBot"`
	Timestamp time.Time `json:"timestamp"`
}

// TimeLabel formats the time-of-day shown under a bubble.
func (m Message) TimeLabel() string {
	return m.Timestamp.Format("15:04")
}
