package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

const (
	usersCollection = "users"

	indexUsername   = "uniq_username"
	indexEmail      = "uniq_email"
	indexEmployeeID = "uniq_employee_id"
)

var userSearchFields = []string{"username", "email", "firstName", "lastName"}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password"`
	FirstName    string             `bson:"firstName"`
	LastName     string             `bson:"lastName"`
	Role         string             `bson:"role"`
	Department   string             `bson:"department,omitempty"`
	Position     string             `bson:"position,omitempty"`
	EmployeeID   string             `bson:"employeeId,omitempty"`
	PhoneNumber  string             `bson:"phoneNumber,omitempty"`
	ProfileImage string             `bson:"profileImage,omitempty"`
	IsActive     bool               `bson:"isActive"`

	LastLoginAt       *time.Time `bson:"lastLoginAt,omitempty"`
	PasswordChangedAt *time.Time `bson:"passwordChangedAt,omitempty"`

	PasswordResetToken       string     `bson:"passwordResetToken,omitempty"`
	PasswordResetExpires     *time.Time `bson:"passwordResetExpires,omitempty"`
	EmailVerified            bool       `bson:"emailVerified"`
	EmailVerificationToken   string     `bson:"emailVerificationToken,omitempty"`
	EmailVerificationExpires *time.Time `bson:"emailVerificationExpires,omitempty"`

	Preferences primitive.M `bson:"preferences,omitempty"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		Username:                 u.Username,
		Email:                    u.Email,
		Password:                 u.PasswordHash,
		FirstName:                u.FirstName,
		LastName:                 u.LastName,
		Role:                     string(u.Role),
		Department:               u.Department,
		Position:                 u.Position,
		EmployeeID:               u.EmployeeID,
		PhoneNumber:              u.PhoneNumber,
		ProfileImage:             u.ProfileImage,
		IsActive:                 u.IsActive,
		LastLoginAt:              u.LastLoginAt,
		PasswordChangedAt:        u.PasswordChangedAt,
		PasswordResetToken:       u.PasswordResetToken,
		PasswordResetExpires:     u.PasswordResetExpires,
		EmailVerified:            u.EmailVerified,
		EmailVerificationToken:   u.EmailVerificationToken,
		EmailVerificationExpires: u.EmailVerificationExpires,
		Preferences:              u.Preferences,
		CreatedAt:                u.CreatedAt,
		UpdatedAt:                u.UpdatedAt,
	}
}

func (m mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                       m.ID.Hex(),
		Username:                 m.Username,
		Email:                    m.Email,
		PasswordHash:             m.Password,
		FirstName:                m.FirstName,
		LastName:                 m.LastName,
		Role:                     domain.Role(m.Role),
		Department:               m.Department,
		Position:                 m.Position,
		EmployeeID:               m.EmployeeID,
		PhoneNumber:              m.PhoneNumber,
		ProfileImage:             m.ProfileImage,
		IsActive:                 m.IsActive,
		LastLoginAt:              m.LastLoginAt,
		PasswordChangedAt:        m.PasswordChangedAt,
		PasswordResetToken:       m.PasswordResetToken,
		PasswordResetExpires:     m.PasswordResetExpires,
		EmailVerified:            m.EmailVerified,
		EmailVerificationToken:   m.EmailVerificationToken,
		EmailVerificationExpires: m.EmailVerificationExpires,
		Preferences:              m.Preferences,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}
}

// duplicateUserError maps a duplicate-key failure to the offending constraint.
func duplicateUserError(err error) error {
	if strings.Contains(err.Error(), indexEmployeeID) {
		return domain.ErrEmployeeIDTaken
	}
	return domain.ErrUserExists
}

// Create inserts a user. The unique indexes reject duplicates atomically.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoUser(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByLogin(ctx context.Context, identifier string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": strings.ToLower(identifier)},
	}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := objectID(id); err == nil {
			oids = append(oids, oid)
		}
	}
	out := make(map[string]*domain.User, len(oids))
	if len(oids) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, d := range docs {
		u := d.toDomain()
		out[u.ID] = u
	}
	return out, nil
}

func userUpdateDoc(u ports.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}
	setStr := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	setStr("firstName", u.FirstName)
	setStr("lastName", u.LastName)
	setStr("department", u.Department)
	setStr("position", u.Position)
	setStr("phoneNumber", u.PhoneNumber)
	if u.Email != nil {
		set["email"] = strings.ToLower(*u.Email)
	}
	if u.Role != nil {
		set["role"] = string(*u.Role)
	}
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}
	// employeeId sits behind a sparse unique index, so blank values are removed.
	if u.EmployeeID != nil {
		if *u.EmployeeID == "" {
			unset["employeeId"] = ""
		} else {
			set["employeeId"] = *u.EmployeeID
		}
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

func (r *UserRepository) Update(ctx context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOneAndUpdate(ctx, oid, userUpdateDoc(update, time.Now().UTC()))
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, oid primitive.ObjectID, update bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mu mongoUser
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) updateFields(ctx context.Context, id string, set bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	return r.updateFields(ctx, id, bson.M{
		"password":          hash,
		"passwordChangedAt": changedAt,
		"updatedAt":         changedAt,
	})
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateFields(ctx, id, bson.M{"lastLoginAt": at})
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	return r.updateFields(ctx, id, bson.M{"isActive": false, "updatedAt": time.Now().UTC()})
}

func userListFilter(f ports.UserFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}
	if f.IsActive != nil {
		filter["isActive"] = *f.IsActive
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		filter["$or"] = orAny(userSearchFields, containsRegex(s))
	}
	return filter
}

// List returns a page of users, newest first, and the total match count.
func (r *UserRepository) List(ctx context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := userListFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skipFor(f.Page, f.Limit)).
		SetLimit(int64(f.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, total, nil
}

func (r *UserRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Stats counts all users and groups the active ones by role and department.
func (r *UserRepository) Stats(ctx context.Context) (*ports.UserStats, error) {
	total, err := r.Count(ctx, false)
	if err != nil {
		return nil, err
	}
	active, err := r.Count(ctx, true)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	onlyActive := bson.M{"isActive": true}
	roles, err := groupCount(ctx, r.coll, onlyActive, "role", 0)
	if err != nil {
		return nil, fmt.Errorf("role distribution: %w", err)
	}
	departments, err := groupCount(ctx, r.coll, onlyActive, "department", 0)
	if err != nil {
		return nil, fmt.Errorf("department distribution: %w", err)
	}

	return &ports.UserStats{
		Total:                  total,
		Active:                 active,
		Inactive:               total - active,
		RoleDistribution:       toBuckets(roles),
		DepartmentDistribution: toBuckets(departments),
	}, nil
}

func toBuckets(docs []bucketDoc) []domain.Bucket {
	out := make([]domain.Bucket, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Bucket{Key: d.key(), Count: d.Count})
	}
	return out
}

// EnsureIndexes creates the unique indexes that guard username, email and
// employee id.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(indexUsername).SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(indexEmail).SetUnique(true)},
		{Keys: bson.D{{Key: "employeeId", Value: 1}}, Options: options.Index().SetName(indexEmployeeID).SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
