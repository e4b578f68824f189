package odm

import (
	"go.mongodb.org/mongo-driver/bson"
)

// QueryOption customises a read.
type QueryOption func(*query)

type query struct {
	projection    bson.M
	sort          bson.D
	limit         int64
	includeHidden bool
}

// includes fields declared Hidden in the schema
func WithHidden() QueryOption {
	return func(q *query) {
		q.includeHidden = true
	}
}

// adds projection entries, e.g. {"tags": {"$slice": 5}}
func WithProjection(projection bson.M) QueryOption {
	return func(q *query) {
		for k, v := range projection {
			q.projection[k] = v
		}
	}
}

func WithSort(sort bson.D) QueryOption {
	return func(q *query) {
		q.sort = sort
	}
}

func WithLimit(limit int64) QueryOption {
	return func(q *query) {
		q.limit = limit
	}
}

func (m *Model) query(opts []QueryOption) query {
	q := query{projection: bson.M{}}

	for _, opt := range opts {
		opt(&q)
	}

	if q.includeHidden || hasInclusion(q.projection) {
		return q
	}

	for _, name := range m.schema.hiddenFields() {
		if _, set := q.projection[name]; !set {
			q.projection[name] = 0
		}
	}

	return q
}

// inclusion and exclusion projections can't be mixed
func hasInclusion(projection bson.M) bool {
	for _, v := range projection {
		switch n := v.(type) {
		case int:
			if n == 1 {
				return true
			}
		case bool:
			if n {
				return true
			}
		}
	}

	return false
}
