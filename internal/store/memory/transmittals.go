package memory

import (
	"cmp"
	"context"
	"slices"

	"doccontrol/pkg/types"
)

func (r *repo) CreateTransmittal(ctx context.Context, transmittal *types.Transmittal) error {
	if err := r.writable(); err != nil {
		return err
	}

	for _, orgID := range []string{transmittal.SenderOrgID, transmittal.RecipientOrgID} {
		if _, ok := r.st.organizations[orgID]; !ok {
			return types.ErrOrganizationNotFound
		}
	}
	if _, ok := r.st.users[transmittal.CreatedBy]; !ok {
		return types.ErrUserNotFound
	}

	r.st.transmittals[transmittal.ID] = *transmittal
	return nil
}

func (r *repo) Transmittal(ctx context.Context, id string) (*types.Transmittal, error) {
	transmittal, ok := r.st.transmittals[id]
	if !ok {
		return nil, types.ErrTransmittalNotFound
	}
	return &transmittal, nil
}

func (r *repo) TransmittalsByOrg(ctx context.Context, orgID string) ([]*types.Transmittal, error) {
	out := make([]*types.Transmittal, 0)
	for _, transmittal := range r.st.transmittals {
		if transmittal.SenderOrgID == orgID || transmittal.RecipientOrgID == orgID {
			out = append(out, &transmittal)
		}
	}

	slices.SortFunc(out, func(a, b *types.Transmittal) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return out, nil
}

func (r *repo) LinkTransmittalRevision(ctx context.Context, link *types.TransmittalRevision) error {
	if err := r.writable(); err != nil {
		return err
	}

	if _, ok := r.st.transmittals[link.TransmittalID]; !ok {
		return types.ErrTransmittalNotFound
	}
	if _, ok := r.st.revisions[link.RevisionID]; !ok {
		return types.ErrRevisionNotFound
	}

	for _, existing := range r.st.links {
		if existing.TransmittalID == link.TransmittalID && existing.RevisionID == link.RevisionID {
			return types.ErrRevisionLinked
		}
	}

	r.st.links = append(r.st.links, *link)
	return nil
}

func (r *repo) TransmittalRevisions(ctx context.Context, transmittalID string) ([]*types.TransmittedRevision, error) {
	links := make([]types.TransmittalRevision, 0)
	for _, link := range r.st.links {
		if link.TransmittalID == transmittalID {
			links = append(links, link)
		}
	}

	slices.SortFunc(links, func(a, b types.TransmittalRevision) int {
		return cmp.Compare(a.Position, b.Position)
	})

	out := make([]*types.TransmittedRevision, 0, len(links))
	for _, link := range links {
		rev, ok := r.st.revisions[link.RevisionID]
		if !ok {
			continue
		}

		entry := &types.TransmittedRevision{Revision: rev}
		if doc, ok := r.st.documents[rev.DocumentID]; ok {
			entry.DocNumber = doc.DocNumber
			entry.Title = doc.Title
		}
		out = append(out, entry)
	}

	return out, nil
}
