package repository

import (
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		page, size int
		want       string
	}{
		{name: "all", want: "SELECT isbn FROM book"},
		{name: "first page", page: 1, size: 10, want: "SELECT isbn FROM book LIMIT 10 OFFSET 0"},
		{name: "third page", page: 3, size: 5, want: "SELECT isbn FROM book LIMIT 5 OFFSET 10"},
		{name: "size only", size: 5, want: "SELECT isbn FROM book"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			query, _, err := paginate(qb.Select("isbn").From(bookTableName), tt.page, tt.size).ToSql()
			require.NoError(t, err)
			require.Equal(t, tt.want, query)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	require.True(t, isUniqueViolation(unique))
	require.True(t, isUniqueViolation(fmt.Errorf("insert: %w", unique)))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	require.False(t, isUniqueViolation(fmt.Errorf("boom")))
}
