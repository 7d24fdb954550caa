package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/observability"
)

// documents stores one JSON document per row: (id, created_at, doc jsonb).
// Field names in filters and changes are the document's json keys.
type documents[T any] struct {
	pool     *pgxpool.Pool
	prom     *observability.Prom
	table    string
	notFound error
}

func (d *documents[T]) observe(op string, fn func() error) error {
	op = d.table + "." + op
	return apperr.Persistence(op, d.prom.ObserveDB(op, fn))
}

func (d *documents[T]) insert(ctx context.Context, id string, createdAt time.Time, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperr.Persistence(d.table+".insert", err)
	}

	return d.observe("insert", func() error {
		_, err := d.pool.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (id, created_at, doc) VALUES ($1, $2, $3::jsonb)`, d.table),
			id, createdAt, string(raw),
		)
		return err
	})
}

func (d *documents[T]) findOne(ctx context.Context, w *where) (T, error) {
	var out T
	var raw []byte

	sql := fmt.Sprintf(`SELECT doc FROM %s%s ORDER BY created_at DESC, id ASC LIMIT 1`, d.table, w.clause())

	var missing bool

	err := d.observe("find_one", func() error {
		err := d.pool.QueryRow(ctx, sql, w.args...).Scan(&raw)
		if errors.Is(err, pgx.ErrNoRows) {
			missing = true
			return nil
		}
		return err
	})
	if err != nil {
		return out, err
	}
	if missing {
		return out, d.notFound
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, apperr.Persistence(d.table+".find_one", err)
	}
	return out, nil
}

func (d *documents[T]) find(ctx context.Context, w *where, skip, limit int) (docs []T, err error) {
	sql := fmt.Sprintf(`SELECT doc FROM %s%s ORDER BY created_at DESC, id ASC OFFSET %d`, d.table, w.clause(), skip)
	if limit > 0 {
		sql += fmt.Sprintf(` LIMIT %d`, limit)
	}

	docs = make([]T, 0)

	err = d.observe("find", func() error {
		rows, err := d.pool.Query(ctx, sql, w.args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				return err
			}

			var doc T
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}
			docs = append(docs, doc)
		}

		return rows.Err()
	})

	return docs, err
}

func (d *documents[T]) count(ctx context.Context, w *where) (n int64, err error) {
	sql := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, d.table, w.clause())

	err = d.observe("count", func() error {
		return d.pool.QueryRow(ctx, sql, w.args...).Scan(&n)
	})

	return n, err
}

func (d *documents[T]) sum(ctx context.Context, w *where, field string) (total float64, err error) {
	sql := fmt.Sprintf(`SELECT COALESCE(SUM((doc->>'%s')::numeric), 0)::float8 FROM %s%s`, field, d.table, w.clause())

	err = d.observe("sum", func() error {
		return d.pool.QueryRow(ctx, sql, w.args...).Scan(&total)
	})

	return total, err
}

// set merges changes into the stored document, like a $set on top-level keys.
func (d *documents[T]) set(ctx context.Context, id string, changes map[string]any) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return apperr.Persistence(d.table+".update", err)
	}

	var affected int64

	err = d.observe("update", func() error {
		tag, err := d.pool.Exec(ctx,
			fmt.Sprintf(`UPDATE %s SET doc = doc || $2::jsonb WHERE id = $1`, d.table),
			id, string(raw),
		)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return d.notFound
	}

	return nil
}

// where collects AND-ed conditions with numbered placeholders.
type where struct {
	conds []string
	args  []any
}

func newWhere() *where {
	return &where{}
}

// eq matches a top-level document key. field is always one of the domain Field constants.
func (w *where) eq(field string, v string) *where {
	w.args = append(w.args, v)
	w.conds = append(w.conds, fmt.Sprintf("doc->>'%s' = $%d", field, len(w.args)))
	return w
}

func (w *where) ne(field string, v string) *where {
	w.args = append(w.args, v)
	w.conds = append(w.conds, fmt.Sprintf("doc->>'%s' IS DISTINCT FROM $%d", field, len(w.args)))
	return w
}

func (w *where) id(v string) *where {
	w.args = append(w.args, v)
	w.conds = append(w.conds, fmt.Sprintf("id = $%d", len(w.args)))
	return w
}

func (w *where) createdSince(t time.Time) *where {
	w.args = append(w.args, t)
	w.conds = append(w.conds, fmt.Sprintf("created_at >= $%d", len(w.args)))
	return w
}

func (w *where) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
