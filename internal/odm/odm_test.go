package odm

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testSchema() *Schema {
	return &Schema{
		Name:       "User",
		Strict:     true,
		Timestamps: true,
		Fields: map[string]Field{
			"name": {Type: TypeString, Required: true, Trim: true, MinLength: 2, MaxLength: 50},
			"email": {
				Type:      TypeString,
				Required:  true,
				Trim:      true,
				Lowercase: true,
				Match:     regexp.MustCompile(`\S+@\S+\.\S+`),
				Messages:  map[string]string{"regexp": "Please enter a valid email address"},
			},
			"role": {Type: TypeString, Enum: []string{"admin", "user"}, Default: "user"},
			"tags": {Type: TypeArray},
			"address": {Type: TypeObject, Fields: map[string]Field{
				"city": {Type: TypeString},
			}},
		},
	}
}

func TestRegistry_OverwriteModel(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Register(testSchema())
	require.NoError(t, err)

	_, err = r.Register(testSchema())
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindOverwriteModel, kind)
}

func TestRegistry_MissingSchema(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Model("Order")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindMissingSchema, kind)
	assert.Contains(t, err.Error(), `"Order"`)
}

func TestModel_CastID(t *testing.T) {
	m := newModel(testSchema(), nil)

	_, err := m.CastID("not-an-id")

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindCast, e.Kind)
	assert.Equal(t, "_id", e.Path)
	assert.Equal(t, "not-an-id", e.Value)

	id := primitive.NewObjectID()
	got, err := m.CastID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestModel_ValidateFieldErrors(t *testing.T) {
	m := newModel(testSchema(), nil)

	err := m.Validate(bson.M{"name": "x", "email": "nope", "role": "root"}, false)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindValidation, e.Kind)
	require.Len(t, e.Fields, 3)
	assert.Equal(t, "minlength", e.Fields["name"].Kind)
	assert.Equal(t, "regexp", e.Fields["email"].Kind)
	assert.Equal(t, "Please enter a valid email address", e.Fields["email"].Message)
	assert.Equal(t, "nope", e.Fields["email"].Value)
	assert.Equal(t, "enum", e.Fields["role"].Kind)
	assert.Contains(t, err.Error(), "User validation failed: email: ")
}

func TestModel_ValidateRequired(t *testing.T) {
	m := newModel(testSchema(), nil)

	err := m.Validate(bson.M{}, false)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "required", e.Fields["name"].Kind)
	assert.Equal(t, "required", e.Fields["email"].Kind)

	// partial validation ignores absent fields
	assert.NoError(t, m.Validate(bson.M{"name": "Jane"}, true))
}

func TestModel_ValidateStrictMode(t *testing.T) {
	m := newModel(testSchema(), nil)

	err := m.Validate(bson.M{"name": "Jane", "email": "j@x.io", "nickname": "jj"}, false)
	kind, _ := KindOf(err)
	assert.Equal(t, KindStrictMode, kind)

	err = m.Validate(bson.M{"address": bson.M{"zip": "12345"}}, true)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindStrictMode, e.Kind)
	assert.Equal(t, "address.zip", e.Path)
}

func TestModel_NewNormalizes(t *testing.T) {
	m := newModel(testSchema(), nil)

	d := m.New(bson.M{"name": "  Jane ", "email": " JANE@X.IO"})

	assert.Equal(t, "Jane", d.Get("name"))
	assert.Equal(t, "jane@x.io", d.Get("email"))
	assert.Equal(t, "user", d.Get("role"))
	assert.True(t, d.IsNew())
}

func TestModel_SaveDivergentArray(t *testing.T) {
	m := newModel(testSchema(), nil)

	d := newDocument(m, bson.M{"_id": primitive.NewObjectID(), "__v": int32(2), "tags": bson.A{"a"}}, false)
	d.markPartial(bson.M{"tags": bson.M{"$slice": 1}})
	d.Set("tags", bson.A{"b"})

	err := m.Save(context.Background(), d)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindDivergentArray, kind)
}

func TestModel_SaveParallel(t *testing.T) {
	m := newModel(testSchema(), nil)

	id := primitive.NewObjectID()
	d := newDocument(m, bson.M{"_id": id, "name": "Jane"}, false)

	require.NoError(t, m.beginSave(id))
	defer m.endSave(id)

	err := m.Save(context.Background(), d)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindParallelSave, kind)
}

func TestModel_QueryHidesHiddenFields(t *testing.T) {
	s := testSchema()
	s.Fields["password"] = Field{Type: TypeString, Hidden: true}
	m := newModel(s, nil)

	assert.Equal(t, bson.M{"password": 0}, m.query(nil).projection)
	assert.Empty(t, m.query([]QueryOption{WithHidden()}).projection)
	assert.Equal(t, bson.M{"name": 1}, m.query([]QueryOption{WithProjection(bson.M{"name": 1})}).projection)
}

func TestDocument_DataAndDecode(t *testing.T) {
	m := newModel(testSchema(), nil)
	id := primitive.NewObjectID()

	d := newDocument(m, bson.M{"_id": id, "__v": int32(3), "name": "Jane"}, false)

	var out struct {
		ID      primitive.ObjectID `bson:"_id"`
		Name    string             `bson:"name"`
		Version int32              `bson:"__v"`
	}

	require.NoError(t, d.Decode(&out))
	assert.Equal(t, id, out.ID)
	assert.Equal(t, "Jane", out.Name)
	assert.Equal(t, int32(3), out.Version)
	assert.Equal(t, int32(3), d.Version())
}
