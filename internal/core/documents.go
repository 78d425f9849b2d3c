package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	"github.com/sirupsen/logrus"
)

type NewDocument struct {
	DocNumber     string
	Title         string
	DocType       string
	Status        string
	OrgID         string
	ProjectID     string
	RevisionLabel string
	FileRef       string
}

func (d *NewDocument) normalize() error {
	d.DocNumber = strings.TrimSpace(d.DocNumber)
	d.Title = strings.TrimSpace(d.Title)
	d.DocType = strings.TrimSpace(d.DocType)
	d.Status = strings.TrimSpace(d.Status)
	d.RevisionLabel = strings.TrimSpace(d.RevisionLabel)

	switch {
	case d.DocNumber == "":
		return types.ValidationError("doc number is required")
	case d.Title == "":
		return types.ValidationError("title is required")
	case d.RevisionLabel == "":
		return types.ValidationError("revision label is required")
	case d.OrgID == "" || d.ProjectID == "":
		return types.ValidationError("organization and project are required")
	}

	return nil
}

type appendInput struct {
	label      string
	fileRef    string
	uploadedBy string
	at         time.Time
	eventType  types.EventType
	note       *string
}

// appendRevision adds a revision to doc, points doc at it and logs the event
// describing why it was added.
func (s *Service) appendRevision(ctx context.Context, r Repository, doc *types.Document, in appendInput) (*types.Revision, error) {
	rev := &types.Revision{
		ID:         utils.NanoID(),
		DocumentID: doc.ID,
		Label:      in.label,
		FileRef:    in.fileRef,
		UploadedBy: in.uploadedBy,
		UploadedAt: in.at,
	}

	if err := r.CreateRevision(ctx, rev); err != nil {
		return nil, fmt.Errorf("failed to create revision: %w", err)
	}

	if err := r.SetCurrentRevision(ctx, doc.ID, rev.ID); err != nil {
		return nil, fmt.Errorf("failed to set current revision: %w", err)
	}
	doc.CurrentRevisionID = utils.StringPtr(rev.ID)

	err := s.record(ctx, r, EventInput{
		DocumentID: doc.ID,
		RevisionID: utils.StringPtr(rev.ID),
		UserID:     in.uploadedBy,
		Type:       in.eventType,
		Note:       in.note,
		At:         in.at,
	})
	if err != nil {
		return nil, err
	}

	return rev, nil
}

// registerDocument inserts doc and its first revision. The (doc number,
// organization, project) key must be free.
func (s *Service) registerDocument(ctx context.Context, r Repository, doc *types.Document, in appendInput) (*types.Revision, error) {
	_, err := r.DocumentByNumber(ctx, doc.OrgID, doc.ProjectID, doc.DocNumber)
	if err == nil {
		return nil, types.ErrDocumentExists
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up document number: %w", err)
	}

	doc.ID = utils.NanoID()
	doc.CurrentRevisionID = nil
	doc.CreatedAt = in.at
	if err := r.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return s.appendRevision(ctx, r, doc, in)
}

// resolveDocument finds the register entry for a doc number, returning nil
// when the organization has none in that project yet.
func resolveDocument(ctx context.Context, r Repository, orgID, projectID, docNumber string) (*types.Document, error) {
	return absent(r.DocumentByNumber(ctx, orgID, projectID, docNumber))
}

func (s *Service) projectInOrg(ctx context.Context, r Repository, orgID, projectID string) error {
	project, err := r.Project(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OrgID != orgID {
		return types.ErrProjectNotFound
	}
	return nil
}

// uploadProject accepts a project the organization owns, or one it already
// holds documents in because they were received by transmittal.
func (s *Service) uploadProject(ctx context.Context, r Repository, orgID, projectID string) error {
	project, err := r.Project(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OrgID == orgID {
		return nil
	}

	docs, err := r.DocumentsByProject(ctx, orgID, projectID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return types.ErrProjectNotFound
	}
	return nil
}

// CreateDocument registers a new document with its initial revision and an
// Uploaded event, all in one transaction.
func (s *Service) CreateDocument(ctx context.Context, actor Actor, in NewDocument) (string, error) {
	if err := in.normalize(); err != nil {
		return "", err
	}
	if in.FileRef == "" {
		return "", types.ValidationError("file reference is required")
	}

	if err := Authorize(actor, ActionUploadDocument, in.OrgID); err != nil {
		return "", err
	}

	doc := &types.Document{
		DocNumber: in.DocNumber,
		Title:     in.Title,
		DocType:   in.DocType,
		Status:    in.Status,
		OrgID:     in.OrgID,
		ProjectID: in.ProjectID,
	}

	var rev *types.Revision
	err := s.store.Atomic(ctx, func(r Repository) error {
		if err := s.projectInOrg(ctx, r, in.OrgID, in.ProjectID); err != nil {
			return err
		}

		var err error
		rev, err = s.registerDocument(ctx, r, doc, appendInput{
			label:      in.RevisionLabel,
			fileRef:    in.FileRef,
			uploadedBy: actor.UserID,
			at:         s.now(),
			eventType:  types.EventUploaded,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"revision_id": rev.ID,
		"doc_number":  doc.DocNumber,
		"org_id":      doc.OrgID,
	}).Info("document created")

	return doc.ID, nil
}

// AddRevision appends a revision to an existing document, makes it current and
// logs a RevisionUploaded event. Labels are not compared with earlier ones.
func (s *Service) AddRevision(ctx context.Context, actor Actor, documentID, label, fileRef string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", types.ValidationError("revision label is required")
	}
	if fileRef == "" {
		return "", types.ValidationError("file reference is required")
	}

	var rev *types.Revision
	err := s.store.Atomic(ctx, func(r Repository) error {
		doc, err := r.Document(ctx, documentID)
		if err != nil {
			return err
		}

		if err := Authorize(actor, ActionUploadDocument, doc.OrgID); err != nil {
			return err
		}

		rev, err = s.appendRevision(ctx, r, doc, appendInput{
			label:      label,
			fileRef:    fileRef,
			uploadedBy: actor.UserID,
			at:         s.now(),
			eventType:  types.EventRevisionUploaded,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": documentID,
		"revision_id": rev.ID,
		"label":       label,
	}).Info("revision added")

	return rev.ID, nil
}

type UploadInput struct {
	NewDocument
	FileName    string
	ContentType string
}

type UploadResult struct {
	DocumentID string `json:"documentId"`
	RevisionID string `json:"revisionId"`
	Created    bool   `json:"created"`
}

// Upload stores the file content and files it under the document with the
// same doc number in the project, creating the document when there is none.
// The project must belong to the organization or already hold documents the
// organization received. The stored file is removed again when the register
// update fails.
func (s *Service) Upload(ctx context.Context, actor Actor, in UploadInput, body io.Reader) (*UploadResult, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FileName) == "" {
		return nil, types.ValidationError("file is required")
	}

	if err := Authorize(actor, ActionUploadDocument, in.OrgID); err != nil {
		return nil, err
	}

	err := s.store.View(ctx, func(r Repository) error {
		return s.uploadProject(ctx, r, in.OrgID, in.ProjectID)
	})
	if err != nil {
		return nil, err
	}

	key := path.Join(in.OrgID, in.ProjectID, utils.NanoID()+"_"+path.Base(in.FileName))
	ref, err := s.blobs.Put(ctx, key, body, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store revision file: %w", err)
	}

	result := new(UploadResult)
	err = s.store.Atomic(ctx, func(r Repository) error {
		doc, err := resolveDocument(ctx, r, in.OrgID, in.ProjectID, in.DocNumber)
		if err != nil {
			return err
		}

		next := appendInput{
			label:      in.RevisionLabel,
			fileRef:    ref,
			uploadedBy: actor.UserID,
			at:         s.now(),
		}

		var rev *types.Revision
		if doc == nil {
			doc = &types.Document{
				DocNumber: in.DocNumber,
				Title:     in.Title,
				DocType:   in.DocType,
				Status:    in.Status,
				OrgID:     in.OrgID,
				ProjectID: in.ProjectID,
			}
			next.eventType = types.EventUploaded
			rev, err = s.registerDocument(ctx, r, doc, next)
			result.Created = true
		} else {
			next.eventType = types.EventRevisionUploaded
			rev, err = s.appendRevision(ctx, r, doc, next)
		}
		if err != nil {
			return err
		}

		result.DocumentID = doc.ID
		result.RevisionID = rev.ID
		return nil
	})
	if err != nil {
		s.discardBlob(ctx, ref)
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": result.DocumentID,
		"revision_id": result.RevisionID,
		"created":     result.Created,
		"file_ref":    ref,
	}).Info("revision uploaded")

	return result, nil
}

// discardBlob removes a file whose revision was never committed.
func (s *Service) discardBlob(ctx context.Context, ref string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), ref); err != nil {
		s.logger.WithError(err).WithField("file_ref", ref).Warn("failed to remove orphaned revision file")
	}
}

// ListDocuments returns an organization's register for a project ordered by
// doc number. Documents received by transmittal keep the sender's project, so
// the project is not required to belong to orgID.
func (s *Service) ListDocuments(ctx context.Context, actor Actor, orgID, projectID string) ([]*types.DocumentListing, error) {
	if err := Authorize(actor, ActionViewDocuments, orgID); err != nil {
		return nil, err
	}

	var docs []*types.DocumentListing
	err := s.store.View(ctx, func(r Repository) error {
		if _, err := r.Project(ctx, projectID); err != nil {
			return err
		}

		var err error
		docs, err = r.DocumentsByProject(ctx, orgID, projectID)
		return err
	})
	return docs, utils.ErrorWrapOrNil(err, "failed to list documents")
}

func (s *Service) Document(ctx context.Context, actor Actor, documentID string) (*types.Document, error) {
	var doc *types.Document
	err := s.store.View(ctx, func(r Repository) (err error) {
		doc, err = r.Document(ctx, documentID)
		if err != nil {
			return err
		}
		return Authorize(actor, ActionViewDocuments, doc.OrgID)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// CurrentRevisionLabel reports the label of the document's current revision;
// ok is false when nothing has been uploaded yet.
func (s *Service) CurrentRevisionLabel(ctx context.Context, actor Actor, documentID string) (label string, ok bool, err error) {
	err = s.store.View(ctx, func(r Repository) error {
		doc, err := r.Document(ctx, documentID)
		if err != nil {
			return err
		}

		if err := Authorize(actor, ActionViewDocuments, doc.OrgID); err != nil {
			return err
		}

		if doc.CurrentRevisionID == nil {
			return nil
		}

		rev, err := r.Revision(ctx, *doc.CurrentRevisionID)
		if err != nil {
			return err
		}

		label, ok = rev.Label, true
		return nil
	})
	return label, ok, err
}

// ListRevisions returns a document's revisions newest first.
func (s *Service) ListRevisions(ctx context.Context, actor Actor, documentID string) ([]*types.Revision, error) {
	var revs []*types.Revision
	err := s.store.View(ctx, func(r Repository) error {
		doc, err := r.Document(ctx, documentID)
		if err != nil {
			return err
		}

		if err := Authorize(actor, ActionViewDocuments, doc.OrgID); err != nil {
			return err
		}

		revs, err = r.RevisionsByDocument(ctx, documentID)
		return err
	})
	return revs, utils.ErrorWrapOrNil(err, "failed to list revisions")
}

// OpenRevision returns a revision and a reader over its file content. The
// caller closes the reader.
func (s *Service) OpenRevision(ctx context.Context, actor Actor, revisionID string) (*types.Revision, io.ReadCloser, error) {
	var rev *types.Revision
	err := s.store.View(ctx, func(r Repository) error {
		var err error
		rev, err = r.Revision(ctx, revisionID)
		if err != nil {
			return err
		}

		doc, err := r.Document(ctx, rev.DocumentID)
		if err != nil {
			return err
		}

		return Authorize(actor, ActionViewDocuments, doc.OrgID)
	})
	if err != nil {
		return nil, nil, err
	}

	body, err := s.blobs.Open(ctx, rev.FileRef)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open revision file: %w", err)
	}

	return rev, body, nil
}
