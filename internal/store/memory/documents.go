package memory

import (
	"cmp"
	"context"
	"slices"

	"doccontrol/pkg/types"
)

func (r *repo) CreateDocument(ctx context.Context, doc *types.Document) error {
	if err := r.writable(); err != nil {
		return err
	}

	if _, ok := r.st.organizations[doc.OrgID]; !ok {
		return types.ErrOrganizationNotFound
	}
	if _, ok := r.st.projects[doc.ProjectID]; !ok {
		return types.ErrProjectNotFound
	}

	for _, existing := range r.st.documents {
		if existing.DocNumber == doc.DocNumber && existing.OrgID == doc.OrgID && existing.ProjectID == doc.ProjectID {
			return types.ErrDocumentExists
		}
	}

	r.st.documents[doc.ID] = *doc
	return nil
}

func (r *repo) Document(ctx context.Context, id string) (*types.Document, error) {
	doc, ok := r.st.documents[id]
	if !ok {
		return nil, types.ErrDocumentNotFound
	}
	return &doc, nil
}

func (r *repo) DocumentByNumber(ctx context.Context, orgID, projectID, docNumber string) (*types.Document, error) {
	for _, doc := range r.st.documents {
		if doc.DocNumber == docNumber && doc.OrgID == orgID && doc.ProjectID == projectID {
			return &doc, nil
		}
	}
	return nil, types.ErrDocumentNotFound
}

func (r *repo) listing(doc types.Document) *types.DocumentListing {
	out := &types.DocumentListing{Document: doc}
	if doc.CurrentRevisionID != nil {
		if rev, ok := r.st.revisions[*doc.CurrentRevisionID]; ok {
			label := rev.Label
			out.CurrentRevisionLabel = &label
		}
	}
	return out
}

func compareListings(a, b *types.DocumentListing) int {
	return cmp.Or(
		cmp.Compare(a.DocNumber, b.DocNumber),
		cmp.Compare(a.ProjectID, b.ProjectID),
	)
}

func (r *repo) DocumentsByProject(ctx context.Context, orgID, projectID string) ([]*types.DocumentListing, error) {
	out := make([]*types.DocumentListing, 0)
	for _, doc := range r.st.documents {
		if doc.OrgID == orgID && doc.ProjectID == projectID {
			out = append(out, r.listing(doc))
		}
	}

	slices.SortFunc(out, compareListings)
	return out, nil
}

func (r *repo) DocumentsByOrg(ctx context.Context, orgID string) ([]*types.DocumentListing, error) {
	out := make([]*types.DocumentListing, 0)
	for _, doc := range r.st.documents {
		if doc.OrgID == orgID {
			out = append(out, r.listing(doc))
		}
	}

	slices.SortFunc(out, compareListings)
	return out, nil
}

func (r *repo) SetCurrentRevision(ctx context.Context, documentID, revisionID string) error {
	if err := r.writable(); err != nil {
		return err
	}

	doc, ok := r.st.documents[documentID]
	if !ok {
		return types.ErrDocumentNotFound
	}

	rev, ok := r.st.revisions[revisionID]
	if !ok || rev.DocumentID != documentID {
		return types.ErrRevisionNotFound
	}

	doc.CurrentRevisionID = &revisionID
	r.st.documents[documentID] = doc
	return nil
}

func (r *repo) CreateRevision(ctx context.Context, rev *types.Revision) error {
	if err := r.writable(); err != nil {
		return err
	}

	if _, ok := r.st.documents[rev.DocumentID]; !ok {
		return types.ErrDocumentNotFound
	}
	if _, ok := r.st.users[rev.UploadedBy]; !ok {
		return types.ErrUserNotFound
	}

	rev.Seq = r.st.nextSeq()
	r.st.revisions[rev.ID] = *rev
	return nil
}

func (r *repo) Revision(ctx context.Context, id string) (*types.Revision, error) {
	rev, ok := r.st.revisions[id]
	if !ok {
		return nil, types.ErrRevisionNotFound
	}
	return &rev, nil
}

func (r *repo) RevisionsByDocument(ctx context.Context, documentID string) ([]*types.Revision, error) {
	out := make([]*types.Revision, 0)
	for _, rev := range r.st.revisions {
		if rev.DocumentID == documentID {
			out = append(out, &rev)
		}
	}

	slices.SortFunc(out, func(a, b *types.Revision) int {
		return cmp.Or(b.UploadedAt.Compare(a.UploadedAt), cmp.Compare(b.Seq, a.Seq))
	})

	return out, nil
}

func (r *repo) CreateEvent(ctx context.Context, event *types.Event) error {
	if err := r.writable(); err != nil {
		return err
	}

	if _, ok := r.st.documents[event.DocumentID]; !ok {
		return types.ErrDocumentNotFound
	}
	if event.RevisionID != nil {
		if _, ok := r.st.revisions[*event.RevisionID]; !ok {
			return types.ErrRevisionNotFound
		}
	}
	if _, ok := r.st.users[event.UserID]; !ok {
		return types.ErrUserNotFound
	}

	event.Seq = r.st.nextSeq()
	r.st.events[event.ID] = *event
	return nil
}

func (r *repo) EventsByDocument(ctx context.Context, documentID string) ([]*types.EventEntry, error) {
	out := make([]*types.EventEntry, 0)
	for _, event := range r.st.events {
		if event.DocumentID != documentID {
			continue
		}

		entry := &types.EventEntry{Event: event}
		if user, ok := r.st.users[event.UserID]; ok {
			entry.UserName = user.Name
		}
		out = append(out, entry)
	}

	slices.SortFunc(out, func(a, b *types.EventEntry) int {
		return cmp.Or(b.Timestamp.Compare(a.Timestamp), cmp.Compare(b.Seq, a.Seq))
	})

	return out, nil
}
