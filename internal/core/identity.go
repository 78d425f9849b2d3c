package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	bootstrapOrgName        = "Global"
	bootstrapOrgDescription = "Default global organization"
	bootstrapAdminName      = "Super Admin"
)

// Bootstrap creates the Global organization and a superadmin when the user
// table is empty. It reports whether anything was created.
func (s *Service) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, types.ValidationError("bootstrap admin email and password are required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	created := false
	err = s.store.Atomic(ctx, func(r Repository) error {
		count, err := r.CountUsers(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := s.now()
		org := &types.Organization{
			ID:          utils.NanoID(),
			Name:        bootstrapOrgName,
			Description: bootstrapOrgDescription,
			CreatedAt:   now,
		}
		if err := r.CreateOrganization(ctx, org); err != nil {
			return fmt.Errorf("failed to create bootstrap organization: %w", err)
		}

		admin := &types.User{
			ID:           utils.NanoID(),
			Email:        strings.TrimSpace(email),
			PasswordHash: hash,
			Name:         bootstrapAdminName,
			Role:         types.RoleSuperAdmin,
			OrgID:        utils.StringPtr(org.ID),
			CreatedAt:    now,
		}
		if err := r.CreateUser(ctx, admin); err != nil {
			return fmt.Errorf("failed to create bootstrap superadmin: %w", err)
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if created {
		s.logger.WithField("email", email).Info("created default superadmin")
	}

	return created, nil
}

func (s *Service) CreateOrganization(ctx context.Context, actor Actor, name, description string) (string, error) {
	if err := Authorize(actor, ActionManageOrganizations); err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", types.ValidationError("organization name is required")
	}

	org := &types.Organization{
		ID:          utils.NanoID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}

	err := s.store.Atomic(ctx, func(r Repository) error {
		return r.CreateOrganization(ctx, org)
	})
	if err != nil {
		return "", utils.ErrorWrapOrNil(err, "failed to create organization")
	}

	s.logger.WithFields(logrus.Fields{"org_id": org.ID, "name": org.Name}).Info("organization created")

	return org.ID, nil
}

func (s *Service) Organizations(ctx context.Context, actor Actor) ([]*types.Organization, error) {
	if err := Authorize(actor, ActionListOrganizations); err != nil {
		return nil, err
	}

	var orgs []*types.Organization
	err := s.store.View(ctx, func(r Repository) (err error) {
		orgs, err = r.Organizations(ctx)
		return err
	})
	return orgs, utils.ErrorWrapOrNil(err, "failed to list organizations")
}

// RecipientCandidates lists every organization the actor could send a
// transmittal to.
func (s *Service) RecipientCandidates(ctx context.Context, actor Actor) ([]*types.Organization, error) {
	if err := Authorize(actor, ActionSendTransmittal, actor.OrgID); err != nil {
		return nil, err
	}

	var orgs []*types.Organization
	err := s.store.View(ctx, func(r Repository) (err error) {
		orgs, err = r.Organizations(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	out := make([]*types.Organization, 0, len(orgs))
	for _, org := range orgs {
		if org.ID == actor.OrgID {
			continue
		}
		out = append(out, org)
	}

	return out, nil
}

// GetOrganization returns nil without an error when id is unknown.
func (s *Service) GetOrganization(ctx context.Context, id string) (*types.Organization, error) {
	var org *types.Organization
	err := s.store.View(ctx, func(r Repository) (err error) {
		org, err = absent(r.Organization(ctx, id))
		return err
	})
	return org, err
}

type NewUser struct {
	Email    string
	Password string
	Name     string
	Role     types.Role
	OrgID    string
}

// CreateUser adds a user to an organization. Only a superadmin may create an
// org_admin; any role other than org_admin is stored as user.
func (s *Service) CreateUser(ctx context.Context, actor Actor, in NewUser) (string, error) {
	if err := Authorize(actor, ActionCreateUser, in.OrgID); err != nil {
		return "", err
	}

	role := in.Role
	if role != types.RoleOrgAdmin {
		role = types.RoleUser
	}
	if role == types.RoleOrgAdmin {
		if err := Authorize(actor, ActionCreateOrgAdmin, in.OrgID); err != nil {
			return "", err
		}
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return "", types.ValidationError("email is required")
	}
	if in.Password == "" {
		return "", types.ValidationError("password is required")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return "", err
	}

	user := &types.User{
		ID:           utils.NanoID(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		OrgID:        utils.StringPtr(in.OrgID),
		CreatedAt:    s.now(),
	}

	err = s.store.Atomic(ctx, func(r Repository) error {
		if _, err := r.Organization(ctx, in.OrgID); err != nil {
			return err
		}
		return r.CreateUser(ctx, user)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"org_id":  in.OrgID,
		"role":    role,
	}).Info("user created")

	return user.ID, nil
}

func (s *Service) UsersByOrg(ctx context.Context, actor Actor, orgID string) ([]*types.User, error) {
	if err := Authorize(actor, ActionViewUsers, orgID); err != nil {
		return nil, err
	}

	var users []*types.User
	err := s.store.View(ctx, func(r Repository) error {
		if _, err := r.Organization(ctx, orgID); err != nil {
			return err
		}

		var err error
		users, err = r.UsersByOrg(ctx, orgID)
		return err
	})
	return users, utils.ErrorWrapOrNil(err, "failed to list users")
}

// GetUser returns nil without an error when id is unknown.
func (s *Service) GetUser(ctx context.Context, id string) (*types.User, error) {
	var user *types.User
	err := s.store.View(ctx, func(r Repository) (err error) {
		user, err = absent(r.User(ctx, id))
		return err
	})
	return user, err
}

// GetUserByEmail returns nil without an error when no user has email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var user *types.User
	err := s.store.View(ctx, func(r Repository) (err error) {
		user, err = absent(r.UserByEmail(ctx, strings.TrimSpace(email)))
		return err
	})
	return user, err
}

// Authenticate checks a password credential and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*types.User, error) {
	var user *types.User
	err := s.store.View(ctx, func(r Repository) (err error) {
		user, err = r.UserByEmail(ctx, strings.TrimSpace(email))
		return err
	})
	if errors.Is(err, types.ErrUserNotFound) {
		return nil, types.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, types.ErrInvalidCredentials
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
