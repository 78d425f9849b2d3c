package store

import (
	"context"
	"fmt"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const eventTableName = "events"

var eventColumns = utils.StructTagValues(types.Event{})

type EventRepository struct {
	db DBTX
}

func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) CreateEvent(ctx context.Context, event *types.Event) error {
	values := utils.StructToMap(event, seqColumn)

	query, args, err := psql().
		Insert(eventTableName).
		SetMap(values).
		Suffix("RETURNING " + seqColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create event query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&event.Seq); err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (r *EventRepository) EventsByDocument(ctx context.Context, documentID string) ([]*types.EventEntry, error) {
	query, args, err := psql().
		Select(utils.PrefixSliceOfStrings("e", eventColumns)...).
		Column("u.name AS user_name").
		From(eventTableName + " e").
		Join(userTableName + " u ON u.id = e.user_id").
		Where(sq.Eq{"e.document_id": documentID}).
		OrderBy("e.occurred_at desc", "e.seq desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate events query: %w", err)
	}

	events := make([]*types.EventEntry, 0)
	err = pgxscan.Select(ctx, r.db, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	return events, nil
}
