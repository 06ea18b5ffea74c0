package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-events/internal/apperror"
	"ms-events/internal/models"
)

type fakeDB struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: make(map[int64]*models.User)}
}

func (f *fakeDB) CreateUser(ctx context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeDB) GetUsers(ctx context.Context, ids []int64, from, size int) ([]models.User, error) {
	var list []models.User
	for _, u := range f.users {
		if len(ids) > 0 && !containsID(ids, u.ID) {
			continue
		}
		list = append(list, *u)
	}
	return list, nil
}

func (f *fakeDB) DeleteUser(ctx context.Context, id int64) (bool, error) {
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

func (f *fakeDB) EmailExists(ctx context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	db := newFakeDB()
	service := NewUserService(db)

	_, err := service.Create(context.Background(), models.NewUserRequest{Name: "a", Email: "a@example.com"})
	assert.NoError(t, err)

	_, err = service.Create(context.Background(), models.NewUserRequest{Name: "b", Email: "a@example.com"})
	assert.True(t, apperror.IsKind(err, apperror.ConflictData))
}

func TestCreateUserRejectsBlankFields(t *testing.T) {
	service := NewUserService(newFakeDB())

	_, err := service.Create(context.Background(), models.NewUserRequest{Name: "", Email: "a@example.com"})
	assert.True(t, apperror.IsKind(err, apperror.Validation))

	_, err = service.Create(context.Background(), models.NewUserRequest{Name: "a", Email: " "})
	assert.True(t, apperror.IsKind(err, apperror.Validation))
}

func TestListUsersFiltersByIDs(t *testing.T) {
	db := newFakeDB()
	service := NewUserService(db)

	first, err := service.Create(context.Background(), models.NewUserRequest{Name: "a", Email: "a@example.com"})
	assert.NoError(t, err)
	_, err = service.Create(context.Background(), models.NewUserRequest{Name: "b", Email: "b@example.com"})
	assert.NoError(t, err)

	list, err := service.List(context.Background(), []int64{first.ID}, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestDeleteMissingUserIsNotFound(t *testing.T) {
	service := NewUserService(newFakeDB())

	err := service.Delete(context.Background(), 42)

	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}
