package memory

import "time"

// Source tags where a fact was learned from.
const (
	SourceChat  = "chat"
	SourceEmail = "email"
)

// Fact is a durable key/value personalization record for one user.
type Fact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
