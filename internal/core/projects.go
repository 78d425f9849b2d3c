package core

import (
	"context"
	"fmt"
	"strings"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	"github.com/sirupsen/logrus"
)

func (s *Service) CreateProject(ctx context.Context, actor Actor, orgID, name, description string) (string, error) {
	if err := Authorize(actor, ActionCreateProject, orgID); err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", types.ValidationError("project name is required")
	}

	project := &types.Project{
		ID:          utils.NanoID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OrgID:       orgID,
		CreatedAt:   s.now(),
	}

	err := s.store.Atomic(ctx, func(r Repository) error {
		if _, err := r.Organization(ctx, orgID); err != nil {
			return err
		}
		return r.CreateProject(ctx, project)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"project_id": project.ID, "org_id": orgID}).Info("project created")

	return project.ID, nil
}

func (s *Service) ProjectsByOrg(ctx context.Context, actor Actor, orgID string) ([]*types.Project, error) {
	if err := Authorize(actor, ActionViewProjects, orgID); err != nil {
		return nil, err
	}

	var projects []*types.Project
	err := s.store.View(ctx, func(r Repository) error {
		if _, err := r.Organization(ctx, orgID); err != nil {
			return err
		}

		var err error
		projects, err = r.ProjectsByOrg(ctx, orgID)
		return err
	})
	return projects, utils.ErrorWrapOrNil(err, "failed to list projects")
}

// GetProject returns nil without an error when id is unknown.
func (s *Service) GetProject(ctx context.Context, id string) (*types.Project, error) {
	var project *types.Project
	err := s.store.View(ctx, func(r Repository) (err error) {
		project, err = absent(r.Project(ctx, id))
		return err
	})
	return project, err
}
