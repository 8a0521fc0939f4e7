package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

const usersNS = "dost_logbook.users"

func userDoc(id primitive.ObjectID, username string, active bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "email", Value: username + "@dost.gov.ph"},
		{Key: "password", Value: "$2a$12$hash"},
		{Key: "firstName", Value: "Juan"},
		{Key: "lastName", Value: "Dela Cruz"},
		{Key: "role", Value: "staff"},
		{Key: "isActive", Value: active},
		{Key: "createdAt", Value: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func TestUserRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns inserted id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepository(mt.DB)

		created, err := repo.Create(context.Background(), &domain.User{Username: "juan", Email: "juan@dost.gov.ph", Role: domain.RoleUser, IsActive: true})
		require.NoError(mt, err)
		assert.Len(mt, created.ID, 24)
		assert.Equal(mt, "juan", created.Username)
	})

	mt.Run("duplicate username is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: dost_logbook.users index: uniq_username dup key",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), &domain.User{Username: "juan"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("duplicate employee id is reported separately", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: dost_logbook.users index: uniq_employee_id dup key",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), &domain.User{Username: "juan", EmployeeID: "E-1"})
		assert.ErrorIs(mt, err, domain.ErrEmployeeIDTaken)
	})
}

func TestUserRepository_FindByLogin(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(id, "juan", true)))
		repo := NewUserRepository(mt.DB)

		u, err := repo.FindByLogin(context.Background(), "juan")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, domain.RoleStaff, u.Role)
		assert.Equal(mt, "$2a$12$hash", u.PasswordHash)
		assert.True(mt, u.IsActive)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByLogin(context.Background(), "ghost")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_FindByID_MalformedID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no round trip", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		_, err := repo.FindByID(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns updated document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		doc := userDoc(id, "juan", true)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))
		repo := NewUserRepository(mt.DB)

		name := "Juan"
		u, err := repo.Update(context.Background(), id.Hex(), ports.UserUpdate{FirstName: &name})
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
	})

	mt.Run("unknown id is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		repo := NewUserRepository(mt.DB)

		name := "X"
		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), ports.UserUpdate{FirstName: &name})
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_Deactivate_NotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("zero matched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := NewUserRepository(mt.DB)

		err := repo.Deactivate(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("page and total", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
				userDoc(primitive.NewObjectID(), "a_user", true),
				userDoc(primitive.NewObjectID(), "b_user", false),
			),
		)
		repo := NewUserRepository(mt.DB)

		users, total, err := repo.List(context.Background(), ports.UserFilter{Page: 1, Limit: 2})
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), total)
		require.Len(mt, users, 2)
		assert.Equal(mt, "a_user", users[0].Username)
		assert.False(mt, users[1].IsActive)
	})
}

func TestUserUpdateDoc(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	email := "Juan@DOST.gov.ph"
	empty := ""
	role := domain.RoleAdmin
	active := false

	doc := userUpdateDoc(ports.UserUpdate{Email: &email, EmployeeID: &empty, Role: &role, IsActive: &active}, now)

	set := doc["$set"].(bson.M)
	assert.Equal(t, "juan@dost.gov.ph", set["email"])
	assert.Equal(t, "admin", set["role"])
	assert.Equal(t, false, set["isActive"])
	assert.Equal(t, now, set["updatedAt"])
	assert.NotContains(t, set, "firstName")

	unset := doc["$unset"].(bson.M)
	assert.Contains(t, unset, "employeeId")
}

func TestUserListFilter(t *testing.T) {
	active := true
	f := userListFilter(ports.UserFilter{Role: domain.RoleStaff, IsActive: &active, Search: "a.b"})

	assert.Equal(t, "staff", f["role"])
	assert.Equal(t, true, f["isActive"])

	or := f["$or"].(bson.A)
	require.Len(t, or, 4)
	first := or[0].(bson.M)["username"].(primitive.Regex)
	assert.Equal(t, `a\.b`, first.Pattern)
	assert.Equal(t, "i", first.Options)
}
