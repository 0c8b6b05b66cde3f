package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/fxledger/internal/domain"
)

// PostgreSQL error codes the adapter distinguishes.
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
	pgErrLockNotAvailable     = "55P03"
	pgErrQueryCanceled        = "57014"
	pgErrUniqueViolation      = "23505"
	pgErrForeignKeyViolation  = "23503"
	pgErrCheckViolation       = "23514"
	pgErrNumericOutOfRange    = "22003"
	pgErrClassConnection      = "08"
)

const (
	constraintBalanceNonNegative = "accounts_balance_non_negative"
	constraintUsernameUnique     = "users_username_key"
	constraintAccountUser        = "accounts_user_id_fkey"
)

// mapError translates driver errors into the domain taxonomy. Errors it does
// not recognise are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTransientStorage, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case isTransientCode(pgErr.Code):
			return fmt.Errorf("%w: %w", domain.ErrTransientStorage, err)
		case pgErr.Code == pgErrCheckViolation && pgErr.ConstraintName == constraintBalanceNonNegative:
			return fmt.Errorf("%w: %w", domain.ErrInsufficientFunds, err)
		case pgErr.Code == pgErrNumericOutOfRange:
			return fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err)
		case pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == constraintUsernameUnique:
			return fmt.Errorf("%w: %w", domain.ErrDuplicateUser, err)
		case pgErr.Code == pgErrForeignKeyViolation && pgErr.ConstraintName == constraintAccountUser:
			return fmt.Errorf("%w: %w", domain.ErrUserNotFound, err)
		}
		return err
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %w", domain.ErrTransientStorage, err)
	}

	return err
}

func isTransientCode(code string) bool {
	switch code {
	case pgErrSerializationFailure, pgErrDeadlock, pgErrLockNotAvailable, pgErrQueryCanceled:
		return true
	}
	return strings.HasPrefix(code, pgErrClassConnection)
}
