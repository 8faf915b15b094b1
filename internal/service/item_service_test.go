package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "secondchance/internal/errors"
	"secondchance/internal/logging"
	"secondchance/internal/model"
)

// MockItemRepository is a mock implementation of ItemRepository.
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) List(ctx context.Context) ([]model.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) Search(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) NextID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockItemRepository) Insert(ctx context.Context, item *model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Update(ctx context.Context, item *model.Item) (*model.Item, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) Upsert(ctx context.Context, item *model.Item) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

// MockFileStore is a mock implementation of storage.FileStore.
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockFileStore) Download(ctx context.Context, key string) ([]byte, string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockFileStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestItemService(repo *MockItemRepository, files *MockFileStore) *itemService {
	svc := NewItemService(repo, files, nil, logging.Discard()).(*itemService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestItemService_GetItem(t *testing.T) {
	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, "1").Return(&model.Item{ID: "1", Name: "Desk"}, nil)
	repo.On("FindByID", mock.Anything, "99").Return(nil, apperrors.ErrItemNotFound)

	svc := newTestItemService(repo, new(MockFileStore))

	item, err := svc.GetItem(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Desk", item.Name)

	_, err = svc.GetItem(context.Background(), "99")
	assert.Equal(t, apperrors.ErrItemNotFound, err)
}

func TestItemService_CreateItem(t *testing.T) {
	repo := new(MockItemRepository)
	files := new(MockFileStore)

	repo.On("NextID", mock.Anything).Return("17", nil)
	files.On("Upload", mock.Anything, "17-chair.jpg", []byte("jpeg"), "image/jpeg").Return(nil)
	repo.On("Insert", mock.Anything, mock.AnythingOfType("*model.Item")).Return(nil)

	svc := newTestItemService(repo, files)
	item, err := svc.CreateItem(context.Background(),
		&model.Item{Name: "Chair", Category: "Living", AgeDays: 730},
		&Upload{Filename: "../../etc/chair.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")},
	)
	require.NoError(t, err)

	assert.Equal(t, "17", item.ID)
	assert.Equal(t, fixedNow.Unix(), item.DateAdded)
	assert.Equal(t, 2.0, item.AgeYears)
	assert.Equal(t, "/images/17-chair.jpg", item.Image)
	repo.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestItemService_CreateItem_WithoutUpload(t *testing.T) {
	repo := new(MockItemRepository)
	files := new(MockFileStore)

	repo.On("NextID", mock.Anything).Return("1", nil)
	repo.On("Insert", mock.Anything, mock.AnythingOfType("*model.Item")).Return(nil)

	svc := newTestItemService(repo, files)
	item, err := svc.CreateItem(context.Background(), &model.Item{Name: "Lamp"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "1", item.ID)
	assert.Empty(t, item.Image)
	files.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestItemService_CreateItem_InsertFailureRemovesImage(t *testing.T) {
	repo := new(MockItemRepository)
	files := new(MockFileStore)

	repo.On("NextID", mock.Anything).Return("2", nil)
	files.On("Upload", mock.Anything, "2-lamp.png", mock.Anything, "image/png").Return(nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))
	files.On("Remove", mock.Anything, "2-lamp.png").Return(nil)

	svc := newTestItemService(repo, files)
	_, err := svc.CreateItem(context.Background(), &model.Item{Name: "Lamp"},
		&Upload{Filename: "lamp.png", ContentType: "image/png", Data: []byte("png")})

	require.Error(t, err)
	files.AssertExpectations(t)
	files.AssertNotCalled(t, "Remove", mock.Anything, "lamp.png")
}

func TestItemService_CreateItem_SameFileNameGetsDistinctKeys(t *testing.T) {
	repo := new(MockItemRepository)
	files := new(MockFileStore)

	repo.On("NextID", mock.Anything).Return("5", nil).Once()
	repo.On("NextID", mock.Anything).Return("6", nil).Once()
	files.On("Upload", mock.Anything, "5-chair.jpg", mock.Anything, "image/jpeg").Return(nil)
	files.On("Upload", mock.Anything, "6-chair.jpg", mock.Anything, "image/jpeg").Return(nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("duplicate key")).Once()
	files.On("Remove", mock.Anything, "6-chair.jpg").Return(nil)

	svc := newTestItemService(repo, files)
	upload := func() *Upload {
		return &Upload{Filename: "chair.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}
	}

	first, err := svc.CreateItem(context.Background(), &model.Item{Name: "Chair"}, upload())
	require.NoError(t, err)
	assert.Equal(t, "/images/5-chair.jpg", first.Image)

	_, err = svc.CreateItem(context.Background(), &model.Item{Name: "Chair"}, upload())
	require.Error(t, err)

	files.AssertExpectations(t)
	files.AssertNotCalled(t, "Remove", mock.Anything, "5-chair.jpg")
}

func TestItemService_UpdateItem(t *testing.T) {
	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, "1").Return(&model.Item{
		ID: "1", Category: "Living", Condition: "Used", AgeDays: 100, Description: "old",
	}, nil)

	var saved *model.Item
	repo.On("Update", mock.Anything, mock.AnythingOfType("*model.Item")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*model.Item) }).
		Return(&model.Item{ID: "1"}, nil)

	svc := newTestItemService(repo, new(MockFileStore))
	_, err := svc.UpdateItem(context.Background(), "1", model.ItemUpdate{Condition: "Like New", AgeDays: 730})
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, "Living", saved.Category, "empty fields keep stored values")
	assert.Equal(t, "Like New", saved.Condition)
	assert.Equal(t, 730, saved.AgeDays)
	assert.Equal(t, 2.0, saved.AgeYears)
	assert.Equal(t, "old", saved.Description)
	require.NotNil(t, saved.UpdatedAt)
	assert.Equal(t, fixedNow, *saved.UpdatedAt)
}

func TestItemService_UpdateItem_NotFound(t *testing.T) {
	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, "9").Return(nil, apperrors.ErrItemNotFound)

	svc := newTestItemService(repo, new(MockFileStore))
	_, err := svc.UpdateItem(context.Background(), "9", model.ItemUpdate{Category: "x"})

	assert.Equal(t, apperrors.ErrItemNotFound, err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestItemService_DeleteItem(t *testing.T) {
	repo := new(MockItemRepository)
	repo.On("Delete", mock.Anything, "1").Return(nil)
	repo.On("Delete", mock.Anything, "9").Return(apperrors.ErrItemNotFound)

	svc := newTestItemService(repo, new(MockFileStore))

	assert.NoError(t, svc.DeleteItem(context.Background(), "1"))
	assert.Equal(t, apperrors.ErrItemNotFound, svc.DeleteItem(context.Background(), "9"))
}

func TestItemService_GetImage(t *testing.T) {
	files := new(MockFileStore)
	files.On("Download", mock.Anything, "chair.jpg").Return([]byte("jpeg"), "image/jpeg", nil)

	svc := newTestItemService(new(MockItemRepository), files)

	data, ct, err := svc.GetImage(context.Background(), "chair.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
	assert.Equal(t, "image/jpeg", ct)

	for _, name := range []string{"", "..", "a/b.jpg"} {
		_, _, err := svc.GetImage(context.Background(), name)
		assert.Equal(t, apperrors.ErrFileNotFound, err, "name %q", name)
	}
}

func TestImageKey(t *testing.T) {
	assert.Equal(t, "chair.jpg", imageKey("chair.jpg"))
	assert.Equal(t, "chair.jpg", imageKey("../../chair.jpg"))
	assert.Equal(t, "chair.jpg", imageKey(`C:\Users\me\chair.jpg`))
	assert.Equal(t, "", imageKey(""))
	assert.Equal(t, "", imageKey(".."))
}
