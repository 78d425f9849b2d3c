package core

import (
	"context"
	"io"

	"doccontrol/pkg/types"
)

// Repository is the persistence surface the register is built on. Lookups by
// id return the entity specific not-found sentinel from pkg/types; inserts
// that violate a uniqueness rule return the matching conflict sentinel.
type Repository interface {
	CreateOrganization(ctx context.Context, org *types.Organization) error
	Organization(ctx context.Context, id string) (*types.Organization, error)
	Organizations(ctx context.Context) ([]*types.Organization, error)

	CreateUser(ctx context.Context, user *types.User) error
	User(ctx context.Context, id string) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	UsersByOrg(ctx context.Context, orgID string) ([]*types.User, error)
	CountUsers(ctx context.Context) (int, error)

	CreateProject(ctx context.Context, project *types.Project) error
	Project(ctx context.Context, id string) (*types.Project, error)
	ProjectsByOrg(ctx context.Context, orgID string) ([]*types.Project, error)

	CreateDocument(ctx context.Context, doc *types.Document) error
	Document(ctx context.Context, id string) (*types.Document, error)
	DocumentByNumber(ctx context.Context, orgID, projectID, docNumber string) (*types.Document, error)
	DocumentsByProject(ctx context.Context, orgID, projectID string) ([]*types.DocumentListing, error)
	DocumentsByOrg(ctx context.Context, orgID string) ([]*types.DocumentListing, error)
	SetCurrentRevision(ctx context.Context, documentID, revisionID string) error

	CreateRevision(ctx context.Context, rev *types.Revision) error
	Revision(ctx context.Context, id string) (*types.Revision, error)
	RevisionsByDocument(ctx context.Context, documentID string) ([]*types.Revision, error)

	CreateEvent(ctx context.Context, event *types.Event) error
	EventsByDocument(ctx context.Context, documentID string) ([]*types.EventEntry, error)

	CreateTransmittal(ctx context.Context, transmittal *types.Transmittal) error
	Transmittal(ctx context.Context, id string) (*types.Transmittal, error)
	TransmittalsByOrg(ctx context.Context, orgID string) ([]*types.Transmittal, error)
	LinkTransmittalRevision(ctx context.Context, link *types.TransmittalRevision) error
	TransmittalRevisions(ctx context.Context, transmittalID string) ([]*types.TransmittedRevision, error)
}

// Store hands out a Repository for reads and for atomic units of work. Every
// write made through the Repository passed to Atomic becomes visible together
// when fn returns nil, and none of them do when it returns an error.
type Store interface {
	View(ctx context.Context, fn func(r Repository) error) error
	Atomic(ctx context.Context, fn func(r Repository) error) error
}

// Blobs stores revision file content and hands back an opaque reference.
type Blobs interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}
