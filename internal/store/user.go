package store

import (
	"context"
	"fmt"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const userTableName = "users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *types.User) error {
	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create user query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (r *UserRepository) User(ctx context.Context, id string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"email": email})
}

func (r *UserRepository) userWhere(ctx context.Context, pred sq.Eq) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) UsersByOrg(ctx context.Context, orgID string) ([]*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"org_id": orgID}).
		OrderBy("name asc", "email asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate users-by-org query: %w", err)
	}

	users := make([]*types.User, 0)
	err = pgxscan.Select(ctx, r.db, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by org: %w", err)
	}

	return users, nil
}

func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	query, args, err := psql().
		Select("count(*)").
		From(userTableName).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate count users query: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}
