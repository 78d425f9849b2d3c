package store

import (
	"context"
	"fmt"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const (
	transmittalTableName         = "transmittals"
	transmittalRevisionTableName = "transmittal_revisions"
)

var transmittalColumns = utils.StructTagValues(types.Transmittal{})

type TransmittalRepository struct {
	db DBTX
}

func NewTransmittalRepository(db DBTX) *TransmittalRepository {
	return &TransmittalRepository{db: db}
}

func (r *TransmittalRepository) CreateTransmittal(ctx context.Context, transmittal *types.Transmittal) error {
	query, args, err := psql().
		Insert(transmittalTableName).
		SetMap(utils.StructToMap(transmittal)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create transmittal query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (r *TransmittalRepository) Transmittal(ctx context.Context, id string) (*types.Transmittal, error) {
	query, args, err := psql().
		Select(transmittalColumns...).
		From(transmittalTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transmittal query: %w", err)
	}

	var transmittal types.Transmittal
	err = pgxscan.Get(ctx, r.db, &transmittal, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrTransmittalNotFound
		}
		return nil, fmt.Errorf("failed to fetch transmittal: %w", err)
	}

	return &transmittal, nil
}

// TransmittalsByOrg returns transmittals the organization sent or received.
func (r *TransmittalRepository) TransmittalsByOrg(ctx context.Context, orgID string) ([]*types.Transmittal, error) {
	query, args, err := psql().
		Select(transmittalColumns...).
		From(transmittalTableName).
		Where(sq.Or{
			sq.Eq{"sender_org_id": orgID},
			sq.Eq{"recipient_org_id": orgID},
		}).
		OrderBy("created_at desc", "id asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transmittals query: %w", err)
	}

	transmittals := make([]*types.Transmittal, 0)
	err = pgxscan.Select(ctx, r.db, &transmittals, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transmittals: %w", err)
	}

	return transmittals, nil
}

func (r *TransmittalRepository) LinkTransmittalRevision(ctx context.Context, link *types.TransmittalRevision) error {
	query, args, err := psql().
		Insert(transmittalRevisionTableName).
		SetMap(utils.StructToMap(link)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate link revision query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (r *TransmittalRepository) TransmittalRevisions(ctx context.Context, transmittalID string) ([]*types.TransmittedRevision, error) {
	query, args, err := psql().
		Select(utils.PrefixSliceOfStrings("r", revisionColumns)...).
		Columns("d.doc_number", "d.title").
		From(transmittalRevisionTableName + " tr").
		Join(revisionTableName + " r ON r.id = tr.revision_id").
		Join(documentTableName + " d ON d.id = r.document_id").
		Where(sq.Eq{"tr.transmittal_id": transmittalID}).
		OrderBy("tr.position asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transmittal revisions query: %w", err)
	}

	revs := make([]*types.TransmittedRevision, 0)
	err = pgxscan.Select(ctx, r.db, &revs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transmittal revisions: %w", err)
	}

	return revs, nil
}
