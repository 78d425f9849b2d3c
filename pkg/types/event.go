package types

import (
	"strings"
	"time"
)

type EventType string

const (
	EventUploaded         EventType = "Uploaded"
	EventRevisionUploaded EventType = "RevisionUploaded"
	EventSent             EventType = "Sent"
	EventReceived         EventType = "Received"
)

var builtInEvents = []EventType{EventUploaded, EventRevisionUploaded, EventSent, EventReceived}

// BuiltIn reports whether t is written only by the register's own mutations.
func (t EventType) BuiltIn() bool {
	for _, b := range builtInEvents {
		if strings.EqualFold(strings.TrimSpace(string(t)), string(b)) {
			return true
		}
	}
	return false
}

type Event struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"documentId"`
	RevisionID *string   `db:"revision_id" json:"revisionId,omitempty"`
	UserID     string    `db:"user_id" json:"userId"`
	Type       EventType `db:"event_type" json:"eventType"`
	Timestamp  time.Time `db:"occurred_at" json:"timestamp"`
	Note       *string   `db:"note" json:"note,omitempty"`
	Seq        int64     `db:"seq" json:"-"`
}

// EventEntry is an Event joined with the acting user's display name.
type EventEntry struct {
	Event
	UserName string `db:"user_name" json:"userName"`
}
