package memory

import (
	"cmp"
	"context"
	"slices"

	"doccontrol/pkg/types"
)

func (r *repo) CreateOrganization(ctx context.Context, org *types.Organization) error {
	if err := r.writable(); err != nil {
		return err
	}

	for _, existing := range r.st.organizations {
		if existing.Name == org.Name {
			return types.ErrOrganizationExists
		}
	}

	r.st.organizations[org.ID] = *org
	return nil
}

func (r *repo) Organization(ctx context.Context, id string) (*types.Organization, error) {
	org, ok := r.st.organizations[id]
	if !ok {
		return nil, types.ErrOrganizationNotFound
	}
	return &org, nil
}

func (r *repo) Organizations(ctx context.Context) ([]*types.Organization, error) {
	out := make([]*types.Organization, 0, len(r.st.organizations))
	for _, org := range r.st.organizations {
		out = append(out, &org)
	}

	slices.SortFunc(out, func(a, b *types.Organization) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return out, nil
}

func (r *repo) CreateUser(ctx context.Context, user *types.User) error {
	if err := r.writable(); err != nil {
		return err
	}

	for _, existing := range r.st.users {
		if existing.Email == user.Email {
			return types.ErrEmailTaken
		}
	}

	if user.OrgID != nil {
		if _, ok := r.st.organizations[*user.OrgID]; !ok {
			return types.ErrOrganizationNotFound
		}
	}

	r.st.users[user.ID] = *user
	return nil
}

func (r *repo) User(ctx context.Context, id string) (*types.User, error) {
	user, ok := r.st.users[id]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return &user, nil
}

func (r *repo) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	for _, user := range r.st.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (r *repo) UsersByOrg(ctx context.Context, orgID string) ([]*types.User, error) {
	out := make([]*types.User, 0)
	for _, user := range r.st.users {
		if user.OrgID != nil && *user.OrgID == orgID {
			out = append(out, &user)
		}
	}

	slices.SortFunc(out, func(a, b *types.User) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Email, b.Email))
	})

	return out, nil
}

func (r *repo) CountUsers(ctx context.Context) (int, error) {
	return len(r.st.users), nil
}

func (r *repo) CreateProject(ctx context.Context, project *types.Project) error {
	if err := r.writable(); err != nil {
		return err
	}

	if _, ok := r.st.organizations[project.OrgID]; !ok {
		return types.ErrOrganizationNotFound
	}

	r.st.projects[project.ID] = *project
	return nil
}

func (r *repo) Project(ctx context.Context, id string) (*types.Project, error) {
	project, ok := r.st.projects[id]
	if !ok {
		return nil, types.ErrProjectNotFound
	}
	return &project, nil
}

func (r *repo) ProjectsByOrg(ctx context.Context, orgID string) ([]*types.Project, error) {
	out := make([]*types.Project, 0)
	for _, project := range r.st.projects {
		if project.OrgID == orgID {
			out = append(out, &project)
		}
	}

	slices.SortFunc(out, func(a, b *types.Project) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	return out, nil
}
