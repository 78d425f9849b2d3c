package store

import (
	"errors"
	"fmt"

	"doccontrol/pkg/types"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// constraintErrors maps named constraints from the schema migrations to the
// sentinel returned when they are violated.
var constraintErrors = map[string]error{
	"organizations_name_key":                    types.ErrOrganizationExists,
	"users_email_key":                           types.ErrEmailTaken,
	"documents_identity_key":                    types.ErrDocumentExists,
	"transmittal_revisions_pkey":                types.ErrRevisionLinked,
	"users_org_id_fkey":                         types.ErrOrganizationNotFound,
	"projects_org_id_fkey":                      types.ErrOrganizationNotFound,
	"documents_org_id_fkey":                     types.ErrOrganizationNotFound,
	"documents_project_id_fkey":                 types.ErrProjectNotFound,
	"documents_current_revision_id_fkey":        types.ErrRevisionNotFound,
	"revisions_document_id_fkey":                types.ErrDocumentNotFound,
	"revisions_uploaded_by_fkey":                types.ErrUserNotFound,
	"events_document_id_fkey":                   types.ErrDocumentNotFound,
	"events_revision_id_fkey":                   types.ErrRevisionNotFound,
	"events_user_id_fkey":                       types.ErrUserNotFound,
	"transmittals_sender_org_id_fkey":           types.ErrOrganizationNotFound,
	"transmittals_recipient_org_id_fkey":        types.ErrOrganizationNotFound,
	"transmittals_created_by_fkey":              types.ErrUserNotFound,
	"transmittal_revisions_transmittal_id_fkey": types.ErrTransmittalNotFound,
	"transmittal_revisions_revision_id_fkey":    types.ErrRevisionNotFound,
}

// mapPostgresError maps PostgreSQL errors to the sentinels in pkg/types.
// Errors that are not from PostgreSQL are returned unchanged.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if sentinel, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return sentinel
		}
		return fmt.Errorf("%w: %s", types.ErrConflict, pgErr.ConstraintName)

	case pgerrcode.ForeignKeyViolation:
		if sentinel, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return sentinel
		}
		return fmt.Errorf("%w: %s", types.ErrNotFound, pgErr.Detail)

	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return fmt.Errorf("%w: %s", types.ErrValidation, pgErr.Message)

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("transaction conflict (retryable): %w", err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)

	default:
		return fmt.Errorf("postgres error [%s]: %s (detail: %s): %w",
			pgErr.Code, pgErr.Message, pgErr.Detail, err)
	}
}
