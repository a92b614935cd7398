// Package queue defines message payloads exchanged over the message broker.
package queue

// Activity event types published to the list.activity queue.
const (
	EventMemberJoined = "member.joined"
	EventMemberLeft   = "member.left"
	EventWordAdded    = "word.added"
)

// ActivityEvent is published when something notable happens on a list:
// a member joins or leaves, or a word is submitted. It carries enough
// context for downstream consumers to log or notify without querying
// the primary database. List fields are zero for global-scope events.
type ActivityEvent struct {
	Type       string `json:"type"`
	ListID     uint64 `json:"list_id,omitempty"`
	ListName   string `json:"list_name,omitempty"`
	UserID     uint64 `json:"user_id"`
	UserName   string `json:"user_name"`
	Word       string `json:"word,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
