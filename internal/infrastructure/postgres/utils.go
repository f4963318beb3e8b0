package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Agenda-api/internal/domain"
)

// SQLSTATE usados por el esquema y los procedimientos.
const (
	codeUniqueViolation    = "23505"
	codeExclusionViolation = "23P01"
	codeRaiseException     = "P0001"
	codeNoDataFound        = "P0002"
	codeInvalidTextRep     = "22P02" // uuid mal formado
)

// Mensajes que lanzan hold_slot / confirm_booking con RAISE EXCEPTION.
const (
	msgSlotTaken   = "slot_taken"
	msgHoldExpired = "hold_expired"
)

// isUUID indica si s se puede comparar contra una columna uuid. Un id que no lo es
// no existe en ninguna tabla, así que los repos responden "no encontrado" sin consultar.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// onlyUUIDs descarta los ids mal formados.
func onlyUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}

// optionalUUID traduce un filtro opcional: "" es NULL (sin filtro).
func optionalUUID(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isInvalidText 22P02: el servidor rechazó un literal (uuid mal formado).
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeInvalidTextRep
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

// mapRPCError traduce los errores de los procedimientos de reserva a errores de dominio.
// Devuelve nil si el error no es uno conocido (el llamador lo envuelve como fallo upstream).
func mapRPCError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case codeExclusionViolation:
		return domain.ErrSlotUnavailable
	case codeNoDataFound, codeInvalidTextRep:
		return domain.ErrNotFound
	case codeUniqueViolation:
		return domain.ErrDuplicate
	case codeRaiseException:
		switch {
		case strings.Contains(pgErr.Message, msgSlotTaken):
			return domain.ErrSlotUnavailable
		case strings.Contains(pgErr.Message, msgHoldExpired):
			return domain.ErrHoldExpired
		}
		return domain.ErrConflict
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
