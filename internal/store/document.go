package store

import (
	"context"
	"fmt"

	"doccontrol/internal/utils"
	"doccontrol/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const documentTableName = "documents"

var documentColumns = utils.StructTagValues(types.Document{})

type DocumentRepository struct {
	db DBTX

	// forUpdate locks fetched rows until the surrounding transaction ends,
	// serializing appends to the same document.
	forUpdate bool
}

func NewDocumentRepository(db DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *types.Document) error {
	query, args, err := psql().
		Insert(documentTableName).
		SetMap(utils.StructToMap(doc)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create document query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (r *DocumentRepository) Document(ctx context.Context, id string) (*types.Document, error) {
	return r.documentWhere(ctx, sq.Eq{"id": id})
}

func (r *DocumentRepository) DocumentByNumber(ctx context.Context, orgID, projectID, docNumber string) (*types.Document, error) {
	return r.documentWhere(ctx, sq.Eq{
		"org_id":     orgID,
		"project_id": projectID,
		"doc_number": docNumber,
	})
}

func (r *DocumentRepository) documentWhere(ctx context.Context, pred sq.Eq) (*types.Document, error) {
	builder := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(pred).
		Limit(1)
	if r.forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var doc types.Document
	err = pgxscan.Get(ctx, r.db, &doc, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return &doc, nil
}

func (r *DocumentRepository) DocumentsByProject(ctx context.Context, orgID, projectID string) ([]*types.DocumentListing, error) {
	return r.listings(ctx, sq.Eq{"d.org_id": orgID, "d.project_id": projectID})
}

func (r *DocumentRepository) DocumentsByOrg(ctx context.Context, orgID string) ([]*types.DocumentListing, error) {
	return r.listings(ctx, sq.Eq{"d.org_id": orgID})
}

// listings selects register rows joined with the label of their current
// revision.
func (r *DocumentRepository) listings(ctx context.Context, pred sq.Eq) ([]*types.DocumentListing, error) {
	query, args, err := psql().
		Select(utils.PrefixSliceOfStrings("d", documentColumns)...).
		Column("r.label AS current_revision_label").
		From(documentTableName + " d").
		LeftJoin(revisionTableName + " r ON r.id = d.current_revision_id").
		Where(pred).
		OrderBy("d.doc_number asc", "d.project_id asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document listing query: %w", err)
	}

	docs := make([]*types.DocumentListing, 0)
	err = pgxscan.Select(ctx, r.db, &docs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentRepository) SetCurrentRevision(ctx context.Context, documentID, revisionID string) error {
	query, args, err := psql().
		Update(documentTableName).
		Set("current_revision_id", revisionID).
		Where(sq.Eq{"id": documentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set current revision query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrDocumentNotFound
	}

	return nil
}
