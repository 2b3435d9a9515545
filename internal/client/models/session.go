package models

import "time"

// MessageRole tells who authored a message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is immutable once created and only ever appended to a session.
// Timestamp is epoch milliseconds.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
}

// Time returns the message timestamp as a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// ChatSession is one conversation thread. UserID references the owning
// UserProfile by convention only; orphaned sessions are tolerated.
type ChatSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	UpdatedAt int64     `json:"updatedAt"`
}

// Updated returns UpdatedAt as a time.Time.
func (s ChatSession) Updated() time.Time {
	return time.UnixMilli(s.UpdatedAt)
}
