package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Internal("store unavailable"), cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store unavailable")
	assert.Contains(t, err.Error(), "boom")

	var appErr *AppError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &appErr)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeRateLimited, CodeOf(RateLimited("daily cap reached")))
	assert.Equal(t, ErrCodeValidation, CodeOf(Validation("bad prompt")))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("opaque")))
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("job missing"))
	assert.True(t, IsCode(err, ErrCodeNotFound))
	assert.False(t, IsCode(err, ErrCodeConflict))
	assert.False(t, IsCode(nil, ErrCodeNotFound))
}

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want ErrorCode
	}{
		{"pgx no rows", pgx.ErrNoRows, ErrCodeNotFound},
		{"sql no rows", sql.ErrNoRows, ErrCodeNotFound},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, ErrCodeConflict},
		{"check violation", &pgconn.PgError{Code: pgerrcode.CheckViolation}, ErrCodeValidation},
		{"unknown pg error", &pgconn.PgError{Code: pgerrcode.DiskFull}, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(MapDBError(tt.in)))
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, MapDBError(nil))
	})

	t.Run("opaque error unchanged", func(t *testing.T) {
		opaque := errors.New("not a db error")
		assert.Equal(t, opaque, MapDBError(opaque))
	})
}
