package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Agenda-api/internal/domain"
)

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID(uuid.NewString()))
	assert.False(t, isUUID(""))
	assert.False(t, isUUID("b-0000"))
	assert.False(t, isUUID("123"))
}

func TestOnlyUUIDs(t *testing.T) {
	id := uuid.NewString()
	assert.Equal(t, []string{id}, onlyUUIDs([]string{"x", id, ""}))
	assert.Empty(t, onlyUUIDs([]string{"x"}))
}

func TestOptionalUUID(t *testing.T) {
	assert.Nil(t, optionalUUID(""))
	assert.Equal(t, "abc", optionalUUID("abc"))
}

func TestMapRPCError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exclusión", &pgconn.PgError{Code: codeExclusionViolation}, domain.ErrSlotUnavailable},
		{"uuid mal formado", &pgconn.PgError{Code: codeInvalidTextRep}, domain.ErrNotFound},
		{"sin datos", &pgconn.PgError{Code: codeNoDataFound}, domain.ErrNotFound},
		{"único", &pgconn.PgError{Code: codeUniqueViolation}, domain.ErrDuplicate},
		{"slot_taken", &pgconn.PgError{Code: codeRaiseException, Message: "slot_taken"}, domain.ErrSlotUnavailable},
		{"hold_expired", &pgconn.PgError{Code: codeRaiseException, Message: "hold_expired"}, domain.ErrHoldExpired},
		{"otra excepción", &pgconn.PgError{Code: codeRaiseException, Message: "x"}, domain.ErrConflict},
		{"desconocido", &pgconn.PgError{Code: "42P01"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapRPCError(tt.err))
		})
	}
	assert.True(t, isInvalidText(&pgconn.PgError{Code: codeInvalidTextRep}))
	assert.False(t, isInvalidText(&pgconn.PgError{Code: codeUniqueViolation}))
}
