package users

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/internal/cache"
	apperrors "codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/logger"
	"codeberg.org/starterkit/server/internal/odm"
)

const defaultCacheTTL = 10 * time.Minute

// creates a new user repository. c may be nil to disable caching.
func NewRepository(model *odm.Model, c *cache.Client) *Repository {
	return &Repository{model: model, cache: c, cacheTTL: defaultCacheTTL}
}

// creates a user with a hashed password
func (r *Repository) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	data := bson.M{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	}

	if req.Role != "" {
		data["role"] = req.Role
	}

	if req.Phone != "" {
		data["phone"] = req.Phone
	}

	if req.Address != nil {
		data["address"] = req.Address.document()
	}

	doc := r.model.New(data)

	// the length rules apply to the plain password, not its hash
	if err := r.model.Validate(doc.Data(), false); err != nil {
		return nil, err
	}

	_, err := r.model.FindOne(ctx, bson.M{"email": doc.Get("email")})
	if err == nil {
		return nil, apperrors.Conflict("User already exists")
	}

	if !errors.Is(err, odm.ErrNoDocument) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	doc.Set("password", hash)

	if err := r.model.Save(ctx, doc); err != nil {
		return nil, err
	}

	logger.Info("user created", "user_id", doc.ID().Hex(), "role", doc.Get("role"))

	return decode(doc)
}

// lists users, optionally restricted to one role, newest first
func (r *Repository) List(ctx context.Context, role string) ([]User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	docs, err := r.model.Find(ctx, filter, odm.WithSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(docs))

	for _, d := range docs {
		u, err := decode(d)
		if err != nil {
			return nil, err
		}

		users = append(users, *u)
	}

	return users, nil
}

// finds a user by id, reading through the cache
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := r.model.CastID(id); err != nil {
		return nil, err
	}

	var cached User
	if r.readCache(ctx, id, &cached) {
		return &cached, nil
	}

	doc, err := r.model.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	u, err := decode(doc)
	if err != nil {
		return nil, err
	}

	r.writeCache(ctx, u)

	return u, nil
}

// finds a user by email. The password hash is only loaded when withPassword is set.
func (r *Repository) FindByEmail(ctx context.Context, email string, withPassword bool) (*User, error) {
	var opts []odm.QueryOption
	if withPassword {
		opts = append(opts, odm.WithHidden())
	}

	doc, err := r.model.FindOne(ctx, bson.M{"email": normalizeEmail(email)}, opts...)
	if err != nil {
		return nil, notFound(err)
	}

	return decode(doc)
}

// checks an email and password pair
func (r *Repository) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := r.FindByEmail(ctx, email, true)
	if apperrors.IsStatus(err, http.StatusNotFound) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	if err != nil {
		return nil, err
	}

	if !u.IsActive || !auth.CheckPassword(u.Password, password) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	u.Password = ""

	return u, nil
}

// applies the non-nil fields of req
func (r *Repository) Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	set := bson.M{}

	if req.Name != nil {
		set["name"] = *req.Name
	}

	if req.Email != nil {
		set["email"] = *req.Email
	}

	if req.Role != nil {
		set["role"] = *req.Role
	}

	if req.Phone != nil {
		set["phone"] = *req.Phone
	}

	if req.Address != nil {
		set["address"] = req.Address.document()
	}

	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}

	if req.Password != nil {
		if err := r.model.Validate(bson.M{"password": *req.Password}, true); err != nil {
			return nil, err
		}

		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}

		set["password"] = hash
	}

	if len(set) == 0 {
		return nil, apperrors.BadRequest("no fields to update", nil)
	}

	doc, err := r.model.UpdateByID(ctx, id, set)
	if err != nil {
		return nil, notFound(err)
	}

	r.evict(ctx, id)

	return decode(doc)
}

// removes a user
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.model.DeleteByID(ctx, id); err != nil {
		return notFound(err)
	}

	r.evict(ctx, id)

	logger.Info("user deleted", "user_id", id)

	return nil
}

// stores the profile image URLs on the user document
func (r *Repository) SetProfileImages(ctx context.Context, id string, images ProfileImages) (*User, error) {
	doc, err := r.model.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	doc.Set("profileImages", images.document())

	if err := r.model.Save(ctx, doc); err != nil {
		return nil, err
	}

	r.evict(ctx, id)

	return decode(doc)
}

func (r *Repository) readCache(ctx context.Context, id string, u *User) bool {
	if r.cache == nil {
		return false
	}

	found, err := r.cache.GetJSON(ctx, cacheKey(id), u)
	if err != nil {
		// a cache outage degrades to reading the store
		logger.Warn("user cache read failed", "user_id", id, "error", err)
		return false
	}

	return found
}

func (r *Repository) writeCache(ctx context.Context, u *User) {
	if r.cache == nil {
		return
	}

	if err := r.cache.SetJSON(ctx, cacheKey(u.ID.Hex()), u, r.cacheTTL); err != nil {
		logger.Warn("user cache write failed", "user_id", u.ID.Hex(), "error", err)
	}
}

func (r *Repository) evict(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}

	if err := r.cache.Delete(ctx, cacheKey(id)); err != nil {
		logger.Warn("user cache eviction failed", "user_id", id, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cacheKey(id string) string {
	return "user:" + id
}

func decode(doc *odm.Document) (*User, error) {
	var u User
	if err := doc.Decode(&u); err != nil {
		return nil, err
	}

	return &u, nil
}

func notFound(err error) error {
	if errors.Is(err, odm.ErrNoDocument) {
		return apperrors.NotFound("user")
	}

	return err
}
