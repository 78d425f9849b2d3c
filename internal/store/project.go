package store

import (
	"context"
	"fmt"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const projectTableName = "projects"

var projectColumns = utils.StructTagValues(types.Project{})

type ProjectRepository struct {
	db DBTX
}

func NewProjectRepository(db DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) CreateProject(ctx context.Context, project *types.Project) error {
	query, args, err := psql().
		Insert(projectTableName).
		SetMap(utils.StructToMap(project)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create project query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (r *ProjectRepository) Project(ctx context.Context, id string) (*types.Project, error) {
	query, args, err := psql().
		Select(projectColumns...).
		From(projectTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project query: %w", err)
	}

	var project types.Project
	err = pgxscan.Get(ctx, r.db, &project, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	return &project, nil
}

func (r *ProjectRepository) ProjectsByOrg(ctx context.Context, orgID string) ([]*types.Project, error) {
	query, args, err := psql().
		Select(projectColumns...).
		From(projectTableName).
		Where(sq.Eq{"org_id": orgID}).
		OrderBy("name asc", "id asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate projects query: %w", err)
	}

	projects := make([]*types.Project, 0)
	err = pgxscan.Select(ctx, r.db, &projects, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	return projects, nil
}
