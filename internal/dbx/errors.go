package dbx

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a database error for the retry policy: transient
// connection-class failures are expected to clear after reconnecting,
// everything else propagates to the caller immediately.
type Kind int

const (
	KindPermanent Kind = iota
	KindTransient
)

// SQLSTATE classes that indicate the connection, not the statement, is the
// problem: 08xxx connection exceptions, 57Pxx operator intervention
// (admin shutdown, crash shutdown, cannot connect now), 53300 too many
// connections.
func transientSQLState(code string) bool {
	if strings.HasPrefix(code, "08") {
		return true
	}
	if strings.HasPrefix(code, "57P") {
		return true
	}
	return code == "53300"
}

// Classify decides whether err warrants the rollback-reconnect-retry path.
func Classify(err error) Kind {
	if err == nil {
		return KindPermanent
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if transientSQLState(pgErr.Code) {
			return KindTransient
		}
		// Constraint violations, syntax errors and the rest are statement
		// failures; reconnecting would not help.
		return KindPermanent
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return KindTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindTransient
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return KindTransient
	}

	// pgx reports use of a dead handle with plain-text errors rather than
	// sentinel values.
	msg := err.Error()
	if strings.Contains(msg, "conn closed") || strings.Contains(msg, "connection reset") {
		return KindTransient
	}

	return KindPermanent
}

// IsTransient reports whether err is a connection-class failure that the
// session façade may retry once after rebuilding the connection.
func IsTransient(err error) bool {
	return Classify(err) == KindTransient
}
