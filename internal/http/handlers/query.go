package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/apperr"
)

// queryParser collects every bad query parameter before the handler answers.
type queryParser struct {
	ctx  *gin.Context
	verr *apperr.ValidationError
}

func newQuery(ctx *gin.Context) *queryParser {
	return &queryParser{ctx: ctx, verr: apperr.NewValidationError()}
}

// page reads skip (>= 0) and limit (1..maxLimit, default def).
func (q *queryParser) page(def, maxLimit int) (skip, limit int) {
	limit = def

	if raw, ok := q.ctx.GetQuery("skip"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			q.verr.Add(apperr.FieldViolation{Field: "skip", Rule: "gte", Param: "0", Message: "must be a non-negative integer"})
		} else {
			skip = n
		}
	}

	if raw, ok := q.ctx.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			q.verr.Add(apperr.FieldViolation{
				Field:   "limit",
				Rule:    "range",
				Param:   "1-" + strconv.Itoa(maxLimit),
				Message: "must be between 1 and " + strconv.Itoa(maxLimit),
			})
		} else {
			limit = n
		}
	}

	return skip, limit
}

func (q *queryParser) str(name string) *string {
	raw := q.ctx.Query(name)
	if raw == "" {
		return nil
	}
	return &raw
}

func (q *queryParser) err() *apperr.ValidationError {
	if q.verr.Empty() {
		return nil
	}
	return q.verr
}

// enumParam reads an optional enum filter.
func enumParam[T ~string](q *queryParser, name string, valid []T) *T {
	raw := q.ctx.Query(name)
	if raw == "" {
		return nil
	}

	names := make([]string, 0, len(valid))
	for _, v := range valid {
		if string(v) == raw {
			out := v
			return &out
		}
		names = append(names, string(v))
	}

	q.verr.Add(apperr.FieldViolation{
		Field:   name,
		Rule:    "oneof",
		Param:   strings.Join(names, " "),
		Message: "must be one of " + strings.Join(names, ", "),
	})

	return nil
}
