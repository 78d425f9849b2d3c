package store

import (
	"errors"
	"testing"

	"doccontrol/pkg/types"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapPostgresError(t *testing.T) {
	plain := errors.New("plain")

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"not postgres", plain, plain},
		{"named unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "documents_identity_key"}, types.ErrDocumentExists},
		{"other unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "other_key"}, types.ErrConflict},
		{"named foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "revisions_document_id_fkey"}, types.ErrDocumentNotFound},
		{"other foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "other_fkey"}, types.ErrNotFound},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "transmittals_distinct_orgs"}, types.ErrValidation},
		{"not null", &pgconn.PgError{Code: pgerrcode.NotNullViolation}, types.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapPostgresError(tc.err)
			if tc.want == nil {
				require.NoError(t, got)
				return
			}
			require.ErrorIs(t, got, tc.want)
		})
	}

	t.Run("wrapped sentinels keep their base", func(t *testing.T) {
		got := mapPostgresError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
		require.ErrorIs(t, got, types.ErrConflict)
	})

	t.Run("other codes keep the cause", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
		got := mapPostgresError(pgErr)
		require.ErrorIs(t, got, pgErr)
		require.ErrorContains(t, got, "retryable")
	})
}
