package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
)

// PostgreSQL SQLSTATE codes the store reacts to
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeAdminShutdown        = "57P01"
	codeCannotConnectNow     = "57P03"
)

// Classify maps a driver error onto the cross-layer sentinels.
// Unique violations become ErrDuplicate; contention and connection failures
// become ErrStoreUnavailable. Anything else is returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pkgerrors.ErrDuplicate) || errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrDuplicate, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", pkgerrors.ErrDuplicate, pgErr.ConstraintName)
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable,
			codeQueryCanceled, codeAdminShutdown, codeCannotConnectNow:
			return fmt.Errorf("%w: %s", pkgerrors.ErrStoreUnavailable, pgErr.Message)
		}
		// class 08: connection exception
		if len(pgErr.Code) == 5 && pgErr.Code[:2] == "08" {
			return fmt.Errorf("%w: %s", pkgerrors.ErrStoreUnavailable, pgErr.Message)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrStoreUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrStoreUnavailable, err)
	}
	if pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrStoreUnavailable, err)
	}
	return err
}

// IsRetryable reports whether the whole transaction may be replayed
func IsRetryable(err error) bool {
	return errors.Is(Classify(err), pkgerrors.ErrStoreUnavailable)
}
