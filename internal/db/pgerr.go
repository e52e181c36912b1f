package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/myinsta/portfolio-backend/internal/apperr"
)

// SQLSTATE codes the repositories branch on.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeInvalidTextRepr     = "22P02"
)

// Code returns the SQLSTATE of err for both the pgx and lib/pq drivers, or ""
// when err did not come from Postgres.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func message(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Message
	}
	return err.Error()
}

// IsRejection reports whether Postgres refused the statement because of the
// data (integrity constraint class 23 or data exception class 22).
func IsRejection(err error) bool {
	code := Code(err)
	return strings.HasPrefix(code, "23") || strings.HasPrefix(code, "22")
}

// Classify turns store rejections into validation errors carrying the store
// message and wraps everything else with op.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsRejection(err) {
		return &apperr.Error{Kind: apperr.KindValidation, Message: message(err), Err: err}
	}
	return apperr.Internal(fmt.Errorf("%s: %w", op, err))
}
