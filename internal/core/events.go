package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"
)

type EventInput struct {
	DocumentID string
	RevisionID *string
	UserID     string
	Type       types.EventType
	Note       *string
	At         time.Time
}

// record appends to the event log through the caller's repository, so the
// entry commits or rolls back with the mutation it describes.
func (s *Service) record(ctx context.Context, r Repository, in EventInput) error {
	if in.Type == "" {
		return types.ValidationError("event type is required")
	}

	event := &types.Event{
		ID:         utils.NanoID(),
		DocumentID: in.DocumentID,
		RevisionID: in.RevisionID,
		UserID:     in.UserID,
		Type:       in.Type,
		Timestamp:  in.At,
		Note:       in.Note,
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	if err := r.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to record %s event: %w", in.Type, err)
	}

	return nil
}

// RecordEvent appends a free-standing entry to a document's log on behalf of
// the actor. The built-in event types are reserved for the mutations that
// record them.
func (s *Service) RecordEvent(ctx context.Context, actor Actor, documentID string, revisionID *string, eventType types.EventType, note string) error {
	eventType = types.EventType(strings.TrimSpace(string(eventType)))
	switch {
	case eventType == "":
		return types.ValidationError("event type is required")
	case eventType.BuiltIn():
		return types.ValidationError("event type %s is reserved", eventType)
	}

	return s.store.Atomic(ctx, func(r Repository) error {
		doc, err := r.Document(ctx, documentID)
		if err != nil {
			return err
		}

		if err := Authorize(actor, ActionRecordEvent, doc.OrgID); err != nil {
			return err
		}

		if revisionID != nil {
			rev, err := r.Revision(ctx, *revisionID)
			if err != nil {
				return err
			}
			if rev.DocumentID != doc.ID {
				return types.ValidationError("revision %s does not belong to document %s", rev.ID, doc.ID)
			}
		}

		in := EventInput{
			DocumentID: doc.ID,
			RevisionID: revisionID,
			UserID:     actor.UserID,
			Type:       eventType,
			At:         s.now(),
		}
		if note = strings.TrimSpace(note); note != "" {
			in.Note = utils.StringPtr(note)
		}

		return s.record(ctx, r, in)
	})
}

// ListEvents returns a document's log newest first.
func (s *Service) ListEvents(ctx context.Context, actor Actor, documentID string) ([]*types.EventEntry, error) {
	var events []*types.EventEntry
	err := s.store.View(ctx, func(r Repository) error {
		doc, err := r.Document(ctx, documentID)
		if err != nil {
			return err
		}

		if err := Authorize(actor, ActionViewDocuments, doc.OrgID); err != nil {
			return err
		}

		events, err = r.EventsByDocument(ctx, documentID)
		return err
	})
	return events, utils.ErrorWrapOrNil(err, "failed to list events")
}
