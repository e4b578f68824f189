package odm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// Registry owns the compiled models of one database.
type Registry struct {
	db     *mongo.Database
	mu     sync.RWMutex
	models map[string]*Model
}

// creates a registry over db. db may be nil in tests that never reach the driver.
func NewRegistry(db *mongo.Database) *Registry {
	return &Registry{
		db:     db,
		models: map[string]*Model{},
	}
}

// compiles schema into a model; registering the same name twice fails
func (r *Registry) Register(schema *Schema) (*Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[schema.Name]; exists {
		return nil, overwriteModel(schema.Name)
	}

	collection := schema.Collection
	if collection == "" {
		collection = strings.ToLower(schema.Name) + "s"
	}

	var coll *mongo.Collection
	if r.db != nil {
		coll = r.db.Collection(collection)
	}

	m := newModel(schema, coll)
	r.models[schema.Name] = m

	return m, nil
}

// returns a registered model
func (r *Registry) Model(name string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[name]
	if !ok {
		return nil, missingSchema(name)
	}

	return m, nil
}

// creates the unique indexes of every registered model
func (r *Registry) EnsureIndexes(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, m := range r.models {
		if err := m.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("model %s: %w", name, err)
		}
	}

	return nil
}
