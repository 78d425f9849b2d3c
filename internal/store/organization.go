package store

import (
	"context"
	"fmt"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const organizationTableName = "organizations"

var organizationColumns = utils.StructTagValues(types.Organization{})

type OrganizationRepository struct {
	db DBTX
}

func NewOrganizationRepository(db DBTX) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) CreateOrganization(ctx context.Context, org *types.Organization) error {
	query, args, err := psql().
		Insert(organizationTableName).
		SetMap(utils.StructToMap(org)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create organization query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (r *OrganizationRepository) Organization(ctx context.Context, id string) (*types.Organization, error) {
	query, args, err := psql().
		Select(organizationColumns...).
		From(organizationTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organization query: %w", err)
	}

	var org types.Organization
	err = pgxscan.Get(ctx, r.db, &org, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to fetch organization: %w", err)
	}

	return &org, nil
}

func (r *OrganizationRepository) Organizations(ctx context.Context) ([]*types.Organization, error) {
	query, args, err := psql().
		Select(organizationColumns...).
		From(organizationTableName).
		OrderBy("name asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organizations query: %w", err)
	}

	orgs := make([]*types.Organization, 0)
	err = pgxscan.Select(ctx, r.db, &orgs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organizations: %w", err)
	}

	return orgs, nil
}
