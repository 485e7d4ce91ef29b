package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories translate into sentinels
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type scanner interface {
	Scan(dest ...any) error
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
