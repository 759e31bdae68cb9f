package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/alpost/backend/internal/forum"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, forum.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, forum.ErrConflict},
		{"racing insert", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), forum.ErrConflict},
		{"missing parent", &pgconn.PgError{Code: "23503", ConstraintName: "fk_replies_post"}, forum.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.err), tt.expected)
		})
	}

	plain := errors.New("boom")
	assert.Equal(t, plain, translateError(plain))
	assert.Nil(t, translateError(nil))

	check := &pgconn.PgError{Code: "23514"}
	assert.Equal(t, error(check), translateError(check))
}

func TestTranslateUserError(t *testing.T) {
	var inputErr *forum.InputError

	err := translateUserError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})
	assert.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "email", inputErr.Field)
	assert.ErrorIs(t, err, forum.ErrInvalidInput)

	err = translateUserError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"})
	assert.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "username", inputErr.Field)
}

func TestLedgerTables(t *testing.T) {
	assert.Equal(t, tables{"posts", "updoots", "post_id"}, ledgerTables(forum.KindPost))
	assert.Equal(t, tables{"replies", "reply_votes", "reply_id"}, ledgerTables(forum.KindReply))
}
