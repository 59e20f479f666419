// Package convo manages per-(user, character) conversation history: the
// durable turn log and the bounded in-memory view injected into prompts.
package convo

import "time"

// Role identifies the author of a turn.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is the full conversation between one user and one character.
// Turns are append-only and strictly ordered by append sequence.
type Record struct {
	UserID    string `json:"user_id"`
	Character string `json:"character_name"`
	Turns     []Turn `json:"turns"`
}

// NewRecord creates an empty conversation record.
func NewRecord(userID, character string) *Record {
	return &Record{UserID: userID, Character: character}
}

// Append adds a turn to the record.
func (r *Record) Append(role Role, content string, at time.Time) {
	r.Turns = append(r.Turns, Turn{Role: role, Content: content, Timestamp: at})
}
