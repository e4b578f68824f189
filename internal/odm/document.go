package odm

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a loaded (or not yet inserted) record of a Model. It tracks
// which paths were modified so Save only writes what changed.
type Document struct {
	model    *Model
	id       primitive.ObjectID
	data     bson.M
	version  int32
	isNew    bool
	modified map[string]struct{}
	partial  map[string]struct{} // array paths loaded through a limiting projection
}

func newDocument(m *Model, data bson.M, isNew bool) *Document {
	d := &Document{
		model:    m,
		data:     bson.M{},
		isNew:    isNew,
		modified: map[string]struct{}{},
		partial:  map[string]struct{}{},
	}

	for k, v := range data {
		switch k {
		case "_id":
			if id, ok := v.(primitive.ObjectID); ok {
				d.id = id
			}
		case "__v":
			d.version = toInt32(v)
		default:
			d.data[k] = v
		}
	}

	return d
}

func (d *Document) ID() primitive.ObjectID {
	return d.id
}

func (d *Document) Version() int32 {
	return d.version
}

func (d *Document) IsNew() bool {
	return d.isNew
}

// returns the value stored at a top-level path
func (d *Document) Get(path string) any {
	return d.data[path]
}

// sets a top-level path and marks it modified
func (d *Document) Set(path string, value any) {
	d.data[path] = value
	d.modified[path] = struct{}{}
}

// returns the paths modified since the document was loaded or last saved
func (d *Document) ModifiedPaths() []string {
	paths := make([]string, 0, len(d.modified))
	for p := range d.modified {
		paths = append(paths, p)
	}

	return paths
}

// returns a copy of the document including _id and __v
func (d *Document) Data() bson.M {
	out := bson.M{"_id": d.id, "__v": d.version}
	for k, v := range d.data {
		out[k] = v
	}

	return out
}

// decodes the document into v through a BSON round trip
func (d *Document) Decode(v any) error {
	raw, err := bson.Marshal(d.Data())
	if err != nil {
		return err
	}

	return bson.Unmarshal(raw, v)
}

// marks the array paths of a projection that only load part of the array
func (d *Document) markPartial(projection bson.M) {
	for path, spec := range projection {
		if strings.Contains(path, ".$") {
			d.partial[strings.SplitN(path, ".$", 2)[0]] = struct{}{}
			continue
		}

		if m, ok := asMap(spec); ok {
			if _, slice := m["$slice"]; slice {
				d.partial[path] = struct{}{}
			}

			if _, elem := m["$elemMatch"]; elem {
				d.partial[path] = struct{}{}
			}
		}
	}
}

// returns the first modified path that was only partially loaded
func (d *Document) divergentPath() (string, bool) {
	for path := range d.modified {
		for p := range d.partial {
			if path == p || strings.HasPrefix(path, p+".") {
				return path, true
			}
		}
	}

	return "", false
}

func (d *Document) modifiedSet() bson.M {
	set := bson.M{}
	for path := range d.modified {
		set[path] = d.data[path]
	}

	return set
}

func toInt32(v any) int32 {
	switch n := v.(type) {
	case int32:
		return n
	case int64:
		return int32(n) //nolint:gosec // version counters stay small
	case int:
		return int32(n) //nolint:gosec // version counters stay small
	case float64:
		return int32(n)
	default:
		return 0
	}
}
