package odm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Model binds a Schema to a collection.
type Model struct {
	schema *Schema
	coll   *mongo.Collection
	now    func() time.Time

	mu     sync.Mutex
	saving map[primitive.ObjectID]struct{}
}

func newModel(schema *Schema, coll *mongo.Collection) *Model {
	return &Model{
		schema: schema,
		coll:   coll,
		now:    time.Now,
		saving: map[primitive.ObjectID]struct{}{},
	}
}

func (m *Model) Name() string {
	return m.schema.Name
}

// converts a hex string into an ObjectID
func (m *Model) CastID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, castError(m.schema.Name, "_id", id, "ObjectId")
	}

	return oid, nil
}

// validates a full document (partial=false) or an update (partial=true)
func (m *Model) Validate(doc bson.M, partial bool) error {
	return m.schema.validate(doc, partial)
}

// builds an unsaved document with defaults applied
func (m *Model) New(data bson.M) *Document {
	doc := bson.M{}
	for k, v := range data {
		doc[k] = v
	}

	m.schema.normalize(doc, true)
	d := newDocument(m, doc, true)

	for k := range d.data {
		d.modified[k] = struct{}{}
	}

	return d
}

// validates and inserts a new document
func (m *Model) Create(ctx context.Context, data bson.M) (*Document, error) {
	d := m.New(data)

	if err := m.Save(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

// loads a document by its hex id
func (m *Model) FindByID(ctx context.Context, id string, opts ...QueryOption) (*Document, error) {
	oid, err := m.CastID(id)
	if err != nil {
		return nil, err
	}

	return m.FindOne(ctx, bson.M{"_id": oid}, opts...)
}

// loads the first document matching filter
func (m *Model) FindOne(ctx context.Context, filter bson.M, opts ...QueryOption) (*Document, error) {
	q := m.query(opts)

	findOpts := options.FindOne()
	if len(q.projection) > 0 {
		findOpts.SetProjection(q.projection)
	}

	var raw bson.M

	err := m.coll.FindOne(ctx, filter, findOpts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", m.schema.Name, err)
	}

	d := newDocument(m, raw, false)
	d.markPartial(q.projection)

	return d, nil
}

// loads every document matching filter
func (m *Model) Find(ctx context.Context, filter bson.M, opts ...QueryOption) ([]*Document, error) {
	q := m.query(opts)

	findOpts := options.Find()
	if len(q.projection) > 0 {
		findOpts.SetProjection(q.projection)
	}

	if len(q.sort) > 0 {
		findOpts.SetSort(q.sort)
	}

	if q.limit > 0 {
		findOpts.SetLimit(q.limit)
	}

	cursor, err := m.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s documents: %w", m.schema.Name, err)
	}

	defer cursor.Close(ctx) //nolint:errcheck // read-only cursor

	docs := []*Document{}

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", m.schema.Name, err)
		}

		d := newDocument(m, raw, false)
		d.markPartial(q.projection)
		docs = append(docs, d)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s documents: %w", m.schema.Name, err)
	}

	return docs, nil
}

// persists a document. New documents are inserted; loaded documents write
// their modified paths guarded by the version key.
func (m *Model) Save(ctx context.Context, d *Document) error {
	if d.isNew && d.id.IsZero() {
		d.id = primitive.NewObjectID()
	}

	if err := m.beginSave(d.id); err != nil {
		return err
	}
	defer m.endSave(d.id)

	if path, ok := d.divergentPath(); ok {
		return &Error{
			Kind:    KindDivergentArray,
			Model:   m.schema.Name,
			Path:    path,
			Message: fmt.Sprintf("saving array %q loaded through a limiting projection would overwrite elements that were never loaded", path),
		}
	}

	if d.isNew {
		return m.insert(ctx, d)
	}

	return m.update(ctx, d)
}

func (m *Model) insert(ctx context.Context, d *Document) error {
	if err := m.schema.validate(d.data, false); err != nil {
		return err
	}

	doc := d.Data()

	if m.schema.Timestamps {
		now := m.now().UTC()
		doc["createdAt"] = now
		doc["updatedAt"] = now
		d.data["createdAt"] = now
		d.data["updatedAt"] = now
	}

	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert %s: %w", m.schema.Name, err)
	}

	d.isNew = false
	d.modified = map[string]struct{}{}

	return nil
}

func (m *Model) update(ctx context.Context, d *Document) error {
	if len(d.modified) == 0 {
		return nil
	}

	set := d.modifiedSet()
	m.schema.normalize(set, false)

	if err := m.schema.validate(set, true); err != nil {
		return err
	}

	if m.schema.Timestamps {
		set["updatedAt"] = m.now().UTC()
	}

	filter := bson.M{"_id": d.id, "__v": d.version}
	update := bson.M{"$set": set, "$inc": bson.M{"__v": 1}}

	res, err := m.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", m.schema.Name, err)
	}

	if res.MatchedCount == 0 {
		paths := d.ModifiedPaths()
		sort.Strings(paths)

		return &Error{
			Kind:    KindVersion,
			Model:   m.schema.Name,
			Value:   d.version,
			Message: fmt.Sprintf("no matching document found for id %q version %d modified paths %q", d.id.Hex(), d.version, strings.Join(paths, ", ")),
		}
	}

	for k, v := range set {
		d.data[k] = v
	}

	d.version++
	d.modified = map[string]struct{}{}

	return nil
}

// validates set and applies it to the document with the given id
func (m *Model) UpdateByID(ctx context.Context, id string, set bson.M) (*Document, error) {
	oid, err := m.CastID(id)
	if err != nil {
		return nil, err
	}

	m.schema.normalize(set, false)

	if err := m.schema.validate(set, true); err != nil {
		return nil, err
	}

	if m.schema.Timestamps {
		set["updatedAt"] = m.now().UTC()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if projection := m.query(nil).projection; len(projection) > 0 {
		opts.SetProjection(projection)
	}

	var raw bson.M

	err = m.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set, "$inc": bson.M{"__v": 1}}, opts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", m.schema.Name, err)
	}

	return newDocument(m, raw, false), nil
}

// removes the document with the given id and returns it
func (m *Model) DeleteByID(ctx context.Context, id string) (*Document, error) {
	oid, err := m.CastID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndDelete()
	if projection := m.query(nil).projection; len(projection) > 0 {
		opts.SetProjection(projection)
	}

	var raw bson.M

	err = m.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}, opts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}

	if err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", m.schema.Name, err)
	}

	return newDocument(m, raw, false), nil
}

// creates the unique indexes declared by the schema
func (m *Model) EnsureIndexes(ctx context.Context) error {
	var indexes []mongo.IndexModel

	for name, f := range m.schema.Fields {
		if f.Unique {
			indexes = append(indexes, mongo.IndexModel{
				Keys:    bson.D{{Key: name, Value: 1}},
				Options: options.Index().SetUnique(true),
			})
		}
	}

	if len(indexes) == 0 {
		return nil
	}

	if _, err := m.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", m.schema.Name, err)
	}

	return nil
}

// rejects a second concurrent save of the same document
func (m *Model) beginSave(id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.saving[id]; busy {
		return &Error{
			Kind:    KindParallelSave,
			Model:   m.schema.Name,
			Value:   id.Hex(),
			Message: fmt.Sprintf("can't save the same %s document multiple times in parallel: %s", m.schema.Name, id.Hex()),
		}
	}

	m.saving[id] = struct{}{}

	return nil
}

func (m *Model) endSave(id primitive.ObjectID) {
	m.mu.Lock()
	delete(m.saving, id)
	m.mu.Unlock()
}
