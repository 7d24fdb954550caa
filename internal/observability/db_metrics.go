package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// ObserveDB times a store operation such as "registrations.count" or
// "payments.set". A nil Prom just runs fn.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	if p == nil {
		return fn()
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start).Seconds()

	if err != nil {
		p.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
		p.DbQueryDuration.WithLabelValues(op, "error").Observe(elapsed)
		return err
	}

	p.DbQueryDuration.WithLabelValues(op, "ok").Observe(elapsed)
	return nil
}

// pgErrorClasses names the SQLSTATE codes worth their own label.
var pgErrorClasses = map[string]string{
	"23505": "unique_violation",
	"40001": "serialization_failure",
	"40P01": "deadlock",
	"57014": "query_canceled",
}

func classifyDBErr(err error) string {
	if class, ok := classifyPostgres(err); ok {
		return class
	}
	if class, ok := classifyMongo(err); ok {
		return class
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	}
	return "unknown"
}

func classifyPostgres(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if class, ok := pgErrorClasses[pgErr.Code]; ok {
		return class, true
	}
	return "pg_" + pgErr.Code, true
}

func classifyMongo(err error) (string, bool) {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return "unique_violation", true
	case mongo.IsTimeout(err):
		return "timeout", true
	case mongo.IsNetworkError(err):
		return "connection", true
	case errors.Is(err, mongo.ErrClientDisconnected):
		return "connection", true
	}
	return "", false
}
