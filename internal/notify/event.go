// Package notify delivers match, super-like and message notifications off the
// request path. Publishers hand events to a Dispatcher, which queues them
// (in memory or on Redis) and fans each one out to the configured senders.
// Delivery failures are logged and counted, never returned to the publisher.
package notify

import (
	"encoding/json"
	"time"
)

// Kind names the domain event behind a notification.
type Kind string

const (
	KindMatchCreated Kind = "match_created"
	KindSuperLike    Kind = "super_like"
	KindMessageSent  Kind = "message_sent"
)

// Event is the queued unit of work. For a match, Actor and Recipient are the
// two parties in canonical order; both are notified.
type Event struct {
	Kind      Kind      `json:"kind"`
	MatchID   string    `json:"match_id,omitempty"`
	Actor     string    `json:"actor"`
	Recipient string    `json:"recipient"`
	Preview   string    `json:"preview,omitempty"`
	At        time.Time `json:"at"`
}

// MatchCreated is emitted once, by the request that created the match row.
func MatchCreated(matchID, userA, userB string) Event {
	return Event{Kind: KindMatchCreated, MatchID: matchID, Actor: userA, Recipient: userB, At: time.Now().UTC()}
}

// SuperLike is emitted for every super-like swipe.
func SuperLike(sender, recipient string) Event {
	return Event{Kind: KindSuperLike, Actor: sender, Recipient: recipient, At: time.Now().UTC()}
}

// MessageSent is emitted after a chat message is stored.
func MessageSent(matchID, sender, recipient, preview string) Event {
	return Event{Kind: KindMessageSent, MatchID: matchID, Actor: sender, Recipient: recipient, Preview: preview, At: time.Now().UTC()}
}

func (e Event) encode() ([]byte, error) { return json.Marshal(e) }

func decodeEvent(b []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(b, &e)
	return e, err
}
