package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/observability"
)

// collection wraps one mongo collection with metrics, not-found mapping and error wrapping.
type collection[T any] struct {
	coll      *mongo.Collection
	prom      *observability.Prom
	sortField string
	notFound  error
}

func (c *collection[T]) observe(op string, fn func() error) error {
	op = c.coll.Name() + "." + op
	return apperr.Persistence(op, c.prom.ObserveDB(op, fn))
}

func (c *collection[T]) insert(ctx context.Context, doc T) error {
	return c.observe("insert", func() error {
		_, err := c.coll.InsertOne(ctx, doc)
		return err
	})
}

func (c *collection[T]) findOne(ctx context.Context, filter bson.M) (T, error) {
	var out T
	var missing bool

	opts := options.FindOne().SetSort(bson.D{{Key: c.sortField, Value: -1}})

	err := c.observe("find_one", func() error {
		err := c.coll.FindOne(ctx, filter, opts).Decode(&out)
		if errors.Is(err, mongo.ErrNoDocuments) {
			missing = true
			return nil
		}
		return err
	})
	if err != nil {
		return out, err
	}
	if missing {
		return out, c.notFound
	}

	return out, nil
}

func (c *collection[T]) find(ctx context.Context, filter bson.M, skip, limit int) ([]T, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: c.sortField, Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	out := []T{}

	err := c.observe("find", func() error {
		cur, err := c.coll.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})

	return out, err
}

func (c *collection[T]) count(ctx context.Context, filter bson.M) (int64, error) {
	var n int64

	err := c.observe("count", func() error {
		var err error
		n, err = c.coll.CountDocuments(ctx, filter)
		return err
	})

	return n, err
}

func (c *collection[T]) sum(ctx context.Context, filter bson.M, field string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$" + field}}},
		}}},
	}

	var rows []struct {
		Total float64 `bson:"total"`
	}

	err := c.observe("sum", func() error {
		cur, err := c.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		return cur.All(ctx, &rows)
	})
	if err != nil || len(rows) == 0 {
		return 0, err
	}

	return rows[0].Total, nil
}

// set applies $set with the given stored-field changes to the document with id.
func (c *collection[T]) set(ctx context.Context, id string, changes map[string]any) error {
	var matched int64

	err := c.observe("update", func() error {
		res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(changes)})
		if err != nil {
			return err
		}
		matched = res.MatchedCount
		return nil
	})
	if err != nil {
		return err
	}
	if matched == 0 {
		return c.notFound
	}

	return nil
}
