package users

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	apperrors "codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/odm"
)

// repository over a model with no collection; every test fails before the driver is reached
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	model, err := odm.NewRegistry(nil).Register(Schema())
	require.NoError(t, err)

	return NewRepository(model, nil)
}

func TestCreate_ValidationFailsBeforeStore(t *testing.T) {
	r := newTestRepository(t)

	_, err := r.Create(context.Background(), CreateUserRequest{
		Name:     "x",
		Email:    "not-an-email",
		Password: "secret1",
	})

	var e *odm.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, odm.KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "name")
	assert.Equal(t, "Please enter a valid email address", e.Fields["email"].Message)
}

func TestCreate_ShortPasswordIsCheckedBeforeHashing(t *testing.T) {
	r := newTestRepository(t)

	_, err := r.Create(context.Background(), CreateUserRequest{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "abc",
	})

	var e *odm.Error
	require.ErrorAs(t, err, &e)
	require.Contains(t, e.Fields, "password")
	assert.Equal(t, "minlength", e.Fields["password"].Kind)
}

func TestCreate_InvalidNestedAddress(t *testing.T) {
	r := newTestRepository(t)

	_, err := r.Create(context.Background(), CreateUserRequest{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "secret1",
		Phone:    "12",
		Address:  &Address{City: "London", Zip: "ABC"},
	})

	var e *odm.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Invalid ZIP code", e.Fields["address.zip"].Message)
	assert.Equal(t, "Please enter a valid phone number", e.Fields["phone"].Message)
}

func TestCreate_ValidationClassifiesAsFieldErrors(t *testing.T) {
	r := newTestRepository(t)

	_, err := r.Create(context.Background(), CreateUserRequest{
		Name:     "Ada Lovelace",
		Email:    "nope",
		Password: "secret1",
	})

	res := apperrors.NewClassifier().Classify(err)

	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, apperrors.CategoryValidation, res.Category)

	fields, ok := res.Detail.(apperrors.FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "nope", fields["email"].Value)
}

func TestFindByID_InvalidID(t *testing.T) {
	r := newTestRepository(t)

	_, err := r.FindByID(context.Background(), "123")

	kind, ok := odm.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, odm.KindCast, kind)
}

func TestUpdate_NoFields(t *testing.T) {
	r := newTestRepository(t)

	_, err := r.Update(context.Background(), "65f000000000000000000001", UpdateUserRequest{})

	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
}

func TestUpdate_ValidatesChangedFields(t *testing.T) {
	r := newTestRepository(t)
	role := "root"
	short := "abc"

	_, err := r.Update(context.Background(), "65f000000000000000000001", UpdateUserRequest{Role: &role})

	var e *odm.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"role"}, fieldPaths(e))

	_, err = r.Update(context.Background(), "65f000000000000000000001", UpdateUserRequest{Password: &short})
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"password"}, fieldPaths(e))
}

func TestUpdate_InvalidID(t *testing.T) {
	r := newTestRepository(t)
	name := "Grace"

	_, err := r.Update(context.Background(), "nope", UpdateUserRequest{Name: &name})

	kind, ok := odm.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, odm.KindCast, kind)
}

func TestNotFound(t *testing.T) {
	assert.True(t, apperrors.IsStatus(notFound(odm.ErrNoDocument), http.StatusNotFound))

	other := &odm.Error{Kind: odm.KindVersion}
	assert.Same(t, other, notFound(other))
}

func TestAddressDocument(t *testing.T) {
	a := &Address{City: "Paris", Country: "FR"}

	assert.Equal(t, bson.M{"city": "Paris", "country": "FR"}, a.document())
}

func TestDecode(t *testing.T) {
	r := newTestRepository(t)

	doc := r.model.New(bson.M{
		"name":    "  Ada  ",
		"email":   " ADA@Example.com ",
		"address": bson.M{"city": "London"},
	})

	u, err := decode(doc)
	require.NoError(t, err)

	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.True(t, u.IsActive)
	require.NotNil(t, u.Address)
	assert.Equal(t, "London", u.Address.City)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", normalizeEmail("  Ada@Example.COM "))
	assert.Equal(t, "user:abc", cacheKey("abc"))
}

func fieldPaths(e *odm.Error) []string {
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p)
	}

	return paths
}
