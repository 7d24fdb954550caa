package memory

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kicon/kiconapi/internal/apperr"
)

// collection is a map-backed document set. Updates go through the JSON form of
// the document, so change keys are the stored (json) field names.
type collection[T any] struct {
	mu      sync.RWMutex
	items   map[string]T
	id      func(T) string
	created func(T) time.Time
}

func newCollection[T any](id func(T) string, created func(T) time.Time) *collection[T] {
	return &collection[T]{
		items:   make(map[string]T),
		id:      id,
		created: created,
	}
}

func (c *collection[T]) insert(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.id(item)
	if _, ok := c.items[id]; ok {
		return apperr.Persistence("insert", fmt.Errorf("duplicate id %s", id))
	}

	stored, err := merge(item, nil)
	if err != nil {
		return apperr.Persistence("insert", err)
	}

	c.items[id] = stored
	return nil
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return item, false
	}
	return clone(item), true
}

func (c *collection[T]) find(match func(T) bool) (T, bool) {
	items := c.sorted(match)
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[0], true
}

func (c *collection[T]) count(match func(T) bool) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, item := range c.items {
		if match(item) {
			n++
		}
	}
	return n
}

// sorted returns matching items newest first.
func (c *collection[T]) sorted(match func(T) bool) []T {
	c.mu.RLock()
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if match(item) {
			out = append(out, clone(item))
		}
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b T) int {
		if d := c.created(b).Compare(c.created(a)); d != 0 {
			return d
		}
		return cmp.Compare(c.id(a), c.id(b))
	})

	return out
}

func (c *collection[T]) page(match func(T) bool, skip, limit int) []T {
	items := c.sorted(match)

	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]

	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// update merges changes into the stored document. It reports false when id is unknown.
func (c *collection[T]) update(id string, changes map[string]any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.items[id]
	if !ok {
		return false, nil
	}

	next, err := merge(cur, changes)
	if err != nil {
		return true, apperr.Persistence("update", err)
	}

	c.items[id] = next
	return true, nil
}

// clone deep-copies v so callers never share slices or pointers with the store.
func clone[T any](v T) T {
	out, err := merge(v, nil)
	if err != nil {
		return v
	}
	return out
}

// merge round-trips cur through its JSON document with changes applied on top.
func merge[T any](cur T, changes map[string]any) (T, error) {
	var out T

	raw, err := json.Marshal(cur)
	if err != nil {
		return out, err
	}

	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return out, err
	}

	for k, v := range changes {
		doc[k] = v
	}

	if raw, err = json.Marshal(doc); err != nil {
		return out, err
	}

	err = json.Unmarshal(raw, &out)
	return out, err
}
