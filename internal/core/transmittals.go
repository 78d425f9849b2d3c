package core

import (
	"context"
	"fmt"
	"strings"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	"github.com/sirupsen/logrus"
)

type SendInput struct {
	Number         string
	Description    string
	SenderOrgID    string
	RecipientOrgID string
	RevisionIDs    []string
}

// revisionSet drops blank and repeated ids, keeping first-seen order.
func revisionSet(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Send transmits revisions from the sender organization to the recipient.
// For every revision, in the order given, it links the revision to the
// transmittal, logs a Sent event on the source document and replicates the
// revision label and file reference into the recipient's document with the
// same doc number and project, creating that document when needed. The whole
// call is one transaction.
func (s *Service) Send(ctx context.Context, actor Actor, in SendInput) (string, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.Description = strings.TrimSpace(in.Description)
	revisionIDs := revisionSet(in.RevisionIDs)

	switch {
	case in.Number == "":
		return "", types.ValidationError("transmittal number is required")
	case len(revisionIDs) == 0:
		return "", types.ValidationError("at least one revision is required")
	case in.RecipientOrgID == "":
		return "", types.ValidationError("recipient organization is required")
	case in.RecipientOrgID == in.SenderOrgID:
		return "", types.ValidationError("recipient organization must differ from sender")
	}

	if err := Authorize(actor, ActionSendTransmittal, in.SenderOrgID); err != nil {
		return "", err
	}

	var transmittal *types.Transmittal
	err := s.store.Atomic(ctx, func(r Repository) error {
		sender, err := r.Organization(ctx, in.SenderOrgID)
		if err != nil {
			return err
		}

		recipient, err := absent(r.Organization(ctx, in.RecipientOrgID))
		if err != nil {
			return err
		}
		if recipient == nil {
			return types.ValidationError("recipient organization %s does not exist", in.RecipientOrgID)
		}

		now := s.now()
		sentNote := fmt.Sprintf("Transmittal %s sent to %s", in.Number, recipient.Name)
		receivedNote := fmt.Sprintf("Transmittal %s received from %s", in.Number, sender.Name)

		for position, revisionID := range revisionIDs {
			rev, err := r.Revision(ctx, revisionID)
			if err != nil {
				return fmt.Errorf("revision %s: %w", revisionID, err)
			}

			source, err := r.Document(ctx, rev.DocumentID)
			if err != nil {
				return err
			}
			if source.OrgID != sender.ID {
				return types.ValidationError("revision %s does not belong to the sending organization", revisionID)
			}

			if transmittal == nil {
				transmittal = &types.Transmittal{
					ID:             utils.NanoID(),
					Number:         in.Number,
					Description:    in.Description,
					SenderOrgID:    sender.ID,
					RecipientOrgID: recipient.ID,
					CreatedBy:      actor.UserID,
					CreatedAt:      now,
				}
				if err := r.CreateTransmittal(ctx, transmittal); err != nil {
					return fmt.Errorf("failed to create transmittal: %w", err)
				}
			}

			err = r.LinkTransmittalRevision(ctx, &types.TransmittalRevision{
				TransmittalID: transmittal.ID,
				RevisionID:    rev.ID,
				Position:      position,
			})
			if err != nil {
				return fmt.Errorf("failed to link revision %s: %w", rev.ID, err)
			}

			err = s.record(ctx, r, EventInput{
				DocumentID: source.ID,
				RevisionID: utils.StringPtr(rev.ID),
				UserID:     actor.UserID,
				Type:       types.EventSent,
				Note:       utils.StringPtr(sentNote),
				At:         now,
			})
			if err != nil {
				return err
			}

			if err := s.replicate(ctx, r, source, rev, recipient.ID, appendInput{
				label:      rev.Label,
				fileRef:    rev.FileRef,
				uploadedBy: actor.UserID,
				eventType:  types.EventReceived,
				note:       utils.StringPtr(receivedNote),
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"transmittal_id":     transmittal.ID,
		"transmittal_number": transmittal.Number,
		"sender_org_id":      transmittal.SenderOrgID,
		"recipient_org_id":   transmittal.RecipientOrgID,
		"revisions":          len(revisionIDs),
	}).Info("transmittal sent")

	return transmittal.ID, nil
}

// replicate files a copy of rev under the recipient's document matching the
// source's doc number and project, creating that document from the source's
// identity fields when the recipient has none. The copy is stamped after the
// target is resolved so it sorts after any revision committed before it.
func (s *Service) replicate(ctx context.Context, r Repository, source *types.Document, rev *types.Revision, recipientOrgID string, in appendInput) error {
	target, err := resolveDocument(ctx, r, recipientOrgID, source.ProjectID, source.DocNumber)
	if err != nil {
		return err
	}
	in.at = s.now()

	if target == nil {
		target = &types.Document{
			DocNumber: source.DocNumber,
			Title:     source.Title,
			DocType:   source.DocType,
			Status:    source.Status,
			OrgID:     recipientOrgID,
			ProjectID: source.ProjectID,
		}
		_, err = s.registerDocument(ctx, r, target, in)
	} else {
		_, err = s.appendRevision(ctx, r, target, in)
	}
	if err != nil {
		return fmt.Errorf("failed to replicate revision %s: %w", rev.ID, err)
	}

	return nil
}

// ListTransmittals returns the transmittals an organization sent or received,
// newest first.
func (s *Service) ListTransmittals(ctx context.Context, actor Actor, orgID string) ([]*types.Transmittal, error) {
	if err := Authorize(actor, ActionViewTransmittals, orgID); err != nil {
		return nil, err
	}

	var transmittals []*types.Transmittal
	err := s.store.View(ctx, func(r Repository) (err error) {
		transmittals, err = r.TransmittalsByOrg(ctx, orgID)
		return err
	})
	return transmittals, utils.ErrorWrapOrNil(err, "failed to list transmittals")
}

// Transmittal is visible to members of the sending and receiving organizations.
func (s *Service) Transmittal(ctx context.Context, actor Actor, id string) (*types.Transmittal, error) {
	var transmittal *types.Transmittal
	err := s.store.View(ctx, func(r Repository) (err error) {
		transmittal, err = r.Transmittal(ctx, id)
		if err != nil {
			return err
		}
		return Authorize(actor, ActionViewTransmittals, transmittal.SenderOrgID, transmittal.RecipientOrgID)
	})
	if err != nil {
		return nil, err
	}
	return transmittal, nil
}

// TransmittalRevisions lists the revisions linked to a transmittal in the
// order they were sent.
func (s *Service) TransmittalRevisions(ctx context.Context, actor Actor, id string) ([]*types.TransmittedRevision, error) {
	var revs []*types.TransmittedRevision
	err := s.store.View(ctx, func(r Repository) error {
		transmittal, err := r.Transmittal(ctx, id)
		if err != nil {
			return err
		}

		if err := Authorize(actor, ActionViewTransmittals, transmittal.SenderOrgID, transmittal.RecipientOrgID); err != nil {
			return err
		}

		revs, err = r.TransmittalRevisions(ctx, id)
		return err
	})
	return revs, utils.ErrorWrapOrNil(err, "failed to list transmittal revisions")
}

// SendableRevisions lists the organization's documents that have a current
// revision, across all of its projects.
func (s *Service) SendableRevisions(ctx context.Context, actor Actor, orgID string) ([]*types.DocumentListing, error) {
	if err := Authorize(actor, ActionSendTransmittal, orgID); err != nil {
		return nil, err
	}

	var docs []*types.DocumentListing
	err := s.store.View(ctx, func(r Repository) (err error) {
		docs, err = r.DocumentsByOrg(ctx, orgID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	out := make([]*types.DocumentListing, 0, len(docs))
	for _, doc := range docs {
		if doc.CurrentRevisionID != nil {
			out = append(out, doc)
		}
	}

	return out, nil
}
