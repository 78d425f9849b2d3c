package store

import (
	"context"
	"fmt"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const revisionTableName = "revisions"

var revisionColumns = utils.StructTagValues(types.Revision{})

type RevisionRepository struct {
	db DBTX
}

func NewRevisionRepository(db DBTX) *RevisionRepository {
	return &RevisionRepository{db: db}
}

// CreateRevision inserts rev and reads back the sequence the database
// assigned to it.
func (r *RevisionRepository) CreateRevision(ctx context.Context, rev *types.Revision) error {
	values := utils.StructToMap(rev, seqColumn)

	query, args, err := psql().
		Insert(revisionTableName).
		SetMap(values).
		Suffix("RETURNING " + seqColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create revision query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&rev.Seq); err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (r *RevisionRepository) Revision(ctx context.Context, id string) (*types.Revision, error) {
	query, args, err := psql().
		Select(revisionColumns...).
		From(revisionTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate revision query: %w", err)
	}

	var rev types.Revision
	err = pgxscan.Get(ctx, r.db, &rev, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRevisionNotFound
		}
		return nil, fmt.Errorf("failed to fetch revision: %w", err)
	}

	return &rev, nil
}

func (r *RevisionRepository) RevisionsByDocument(ctx context.Context, documentID string) ([]*types.Revision, error) {
	query, args, err := psql().
		Select(revisionColumns...).
		From(revisionTableName).
		Where(sq.Eq{"document_id": documentID}).
		OrderBy("uploaded_at desc", "seq desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate revisions query: %w", err)
	}

	revs := make([]*types.Revision, 0)
	err = pgxscan.Select(ctx, r.db, &revs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revisions: %w", err)
	}

	return revs, nil
}
