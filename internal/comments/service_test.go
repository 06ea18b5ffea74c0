package comments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-events/internal/apperror"
	"ms-events/internal/logger"
	"ms-events/internal/models"
)

type fakeDB struct {
	comments map[int64]*models.Comment
	likes    map[int64]map[int64]bool
	users    map[int64]bool
	events   map[int64]bool
	nextID   int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		comments: make(map[int64]*models.Comment),
		likes:    make(map[int64]map[int64]bool),
		users:    map[int64]bool{1: true, 2: true},
		events:   map[int64]bool{1: true, 2: true},
	}
}

func (f *fakeDB) CreateComment(ctx context.Context, comment *models.Comment) error {
	f.nextID++
	comment.ID = f.nextID
	copied := *comment
	f.comments[comment.ID] = &copied
	return nil
}

func (f *fakeDB) GetCommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, apperror.Newf(apperror.NotFound, "comment %d not found", id)
	}
	copied := *comment
	return &copied, nil
}

func (f *fakeDB) UpdateComment(ctx context.Context, comment *models.Comment) error {
	copied := *comment
	f.comments[comment.ID] = &copied
	return nil
}

func (f *fakeDB) DeleteComment(ctx context.Context, id int64) error {
	delete(f.comments, id)
	delete(f.likes, id)
	return nil
}

func (f *fakeDB) ListByEvent(ctx context.Context, eventID int64, sort string, from, size int) ([]models.Comment, map[int64]int64, error) {
	var list []models.Comment
	likes := make(map[int64]int64)
	for _, c := range f.comments {
		if c.EventID == eventID {
			list = append(list, *c)
			likes[c.ID] = int64(len(f.likes[c.ID]))
		}
	}
	return list, likes, nil
}

func (f *fakeDB) CountLikes(ctx context.Context, commentID int64) (int64, error) {
	return int64(len(f.likes[commentID])), nil
}

func (f *fakeDB) AddLike(ctx context.Context, commentID, userID int64) error {
	if f.likes[commentID][userID] {
		return apperror.Newf(apperror.ConflictData, "user %d already liked comment %d", userID, commentID)
	}
	if f.likes[commentID] == nil {
		f.likes[commentID] = make(map[int64]bool)
	}
	f.likes[commentID][userID] = true
	return nil
}

func (f *fakeDB) RemoveLike(ctx context.Context, commentID, userID int64) (bool, error) {
	if !f.likes[commentID][userID] {
		return false, nil
	}
	delete(f.likes[commentID], userID)
	return true, nil
}

func (f *fakeDB) UserExists(ctx context.Context, id int64) (bool, error) {
	return f.users[id], nil
}

func (f *fakeDB) EventExists(ctx context.Context, id int64) (bool, error) {
	return f.events[id], nil
}

func newTestService(db *fakeDB) *CommentService {
	return NewCommentService(db, logger.NewLogger("comments-test"))
}

func seedComment(db *fakeDB, authorID, eventID int64, text string) *models.Comment {
	db.nextID++
	comment := &models.Comment{
		ID:        db.nextID,
		AuthorID:  authorID,
		EventID:   eventID,
		Text:      text,
		CreatedOn: time.Now(),
	}
	db.comments[comment.ID] = comment
	return comment
}

func TestCreateCommentRejectsBlankText(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)

	_, err := service.Create(context.Background(), 1, 1, models.NewCommentRequest{Text: "   "})

	assert.True(t, apperror.IsKind(err, apperror.Validation))
}

func TestCreateCommentUnknownEvent(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)

	_, err := service.Create(context.Background(), 1, 99, models.NewCommentRequest{Text: "nice"})

	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestUpdateCommentByNonAuthorFails(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)
	comment := seedComment(db, 1, 1, "original")

	_, err := service.Update(context.Background(), 2, comment.ID, 1, models.NewCommentRequest{Text: "hijacked"})

	assert.True(t, apperror.IsKind(err, apperror.Validation))
	assert.Equal(t, "original", db.comments[comment.ID].Text)
}

func TestUpdateCommentWrongEventFails(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)
	comment := seedComment(db, 1, 1, "original")

	_, err := service.Update(context.Background(), 1, comment.ID, 2, models.NewCommentRequest{Text: "moved"})

	assert.True(t, apperror.IsKind(err, apperror.Validation))
}

func TestUpdateCommentMarksEdited(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)
	comment := seedComment(db, 1, 1, "original")

	dto, err := service.Update(context.Background(), 1, comment.ID, 1, models.NewCommentRequest{Text: "revised"})

	assert.NoError(t, err)
	assert.Equal(t, "revised", dto.Text)
	assert.True(t, dto.Edited)
}

func TestDeleteCommentByNonAuthorFails(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)
	comment := seedComment(db, 1, 1, "original")

	err := service.Delete(context.Background(), 2, comment.ID, 1)

	assert.True(t, apperror.IsKind(err, apperror.Validation))
	assert.Contains(t, db.comments, comment.ID)
}

func TestUnlikeWithoutLikeFails(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)
	comment := seedComment(db, 1, 1, "original")

	err := service.Unlike(context.Background(), 2, comment.ID)

	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestListCommentsRejectsUnknownSort(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)

	_, err := service.ListByEvent(context.Background(), 1, "OLDEST", 0, 10)

	assert.True(t, apperror.IsKind(err, apperror.InvalidSort))
}
