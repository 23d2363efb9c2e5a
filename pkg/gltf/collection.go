package gltf

import (
	"bytes"
	"encoding/json"
)

// ID identifies an entity inside one document. Cross references between
// entities are always stored as IDs.
type ID string

// Collection is an insertion-ordered set of entities keyed by ID.
type Collection[T any] struct {
	order []ID
	items map[ID]*T
}

func (c *Collection[T]) add(id ID, v *T) *T {
	if c.items == nil {
		c.items = make(map[ID]*T)
	}
	c.order = append(c.order, id)
	c.items[id] = v
	return v
}

// Get returns the entity with the given ID.
func (c *Collection[T]) Get(id ID) (*T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// Has reports whether an entity with the given ID exists.
func (c *Collection[T]) Has(id ID) bool {
	_, ok := c.items[id]
	return ok
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int {
	return len(c.order)
}

// IDs returns the entity IDs in insertion order.
func (c *Collection[T]) IDs() []ID {
	return append([]ID(nil), c.order...)
}

// Each calls fn for every entity in insertion order.
func (c *Collection[T]) Each(fn func(ID, *T)) {
	for _, id := range c.order {
		fn(id, c.items[id])
	}
}

// MarshalJSON writes the collection as a JSON object keyed by ID, in insertion order.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(id))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.items[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
