package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"secondchance/internal/cache"
	apperrors "secondchance/internal/errors"
	"secondchance/internal/model"
	"secondchance/internal/repository"
	"secondchance/internal/storage"
)

const itemCacheTTL = 5 * time.Minute

// ImagePathPrefix is the public path under which uploaded images are served.
const ImagePathPrefix = "/images/"

// Upload is an image received with a new item.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ItemService exposes marketplace item operations.
type ItemService interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	CreateItem(ctx context.Context, item *model.Item, upload *Upload) (*model.Item, error)
	UpdateItem(ctx context.Context, id string, upd model.ItemUpdate) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error
	SearchItems(ctx context.Context, filter model.ItemFilter) ([]model.Item, error)
	GetImage(ctx context.Context, name string) ([]byte, string, error)
}

type itemService struct {
	repo  repository.ItemRepository
	files storage.FileStore
	cache *cache.Client
	log   *slog.Logger
	now   func() time.Time
}

// NewItemService creates a new item service. cache may be nil.
func NewItemService(repo repository.ItemRepository, files storage.FileStore, cache *cache.Client, log *slog.Logger) ItemService {
	return &itemService{
		repo:  repo,
		files: files,
		cache: cache,
		log:   log.With("component", "items"),
		now:   time.Now,
	}
}

func (s *itemService) cacheKey(id string) string {
	return fmt.Sprintf("item:%s", id)
}

func (s *itemService) ListItems(ctx context.Context) ([]model.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "oops something went wrong", "error", err)
		return nil, err
	}
	return items, nil
}

// GetItem retrieves an item by id with caching.
func (s *itemService) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var cached model.Item
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrItemNotFound) {
			s.log.ErrorContext(ctx, "Error fetching the secondChanceItem by ID", "id", id, "error", err)
		}
		return nil, err
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), item, itemCacheTTL)
	return item, nil
}

// CreateItem assigns the next id, stores the optional image and inserts item.
func (s *itemService) CreateItem(ctx context.Context, item *model.Item, upload *Upload) (*model.Item, error) {
	id, err := s.repo.NextID(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Error adding a new secondChanceItem", "error", err)
		return nil, err
	}
	item.ID = id
	item.DateAdded = s.now().Unix()
	item.AgeYears = model.AgeYearsFromDays(item.AgeDays)

	var key string
	if upload != nil {
		base := imageKey(upload.Filename)
		if base == "" {
			return nil, apperrors.Validation("invalid file name %q", upload.Filename)
		}
		key = item.ID + "-" + base
		if err := s.files.Upload(ctx, key, upload.Data, upload.ContentType); err != nil {
			s.log.ErrorContext(ctx, "Error uploading item image", "file", key, "error", err)
			return nil, err
		}
		item.Image = ImagePathPrefix + key
		s.log.InfoContext(ctx, "File uploaded successfully", "path", item.Image)
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		s.log.ErrorContext(ctx, "Error adding a new secondChanceItem", "error", err)
		if key != "" {
			if rmErr := s.files.Remove(ctx, key); rmErr != nil {
				s.log.WarnContext(ctx, "Orphaned item image", "file", key, "error", rmErr)
			}
		}
		return nil, err
	}
	return item, nil
}

// UpdateItem overrides the non-empty fields of upd and recomputes age_years.
func (s *itemService) UpdateItem(ctx context.Context, id string, upd model.ItemUpdate) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrItemNotFound) {
			s.log.ErrorContext(ctx, "secondChanceItem not found", "id", id)
		}
		return nil, err
	}

	if upd.Category != "" {
		item.Category = upd.Category
	}
	if upd.Condition != "" {
		item.Condition = upd.Condition
	}
	if upd.AgeDays > 0 {
		item.AgeDays = upd.AgeDays
	}
	if upd.Description != "" {
		item.Description = upd.Description
	}
	item.AgeYears = model.AgeYearsFromDays(item.AgeDays)
	now := s.now()
	item.UpdatedAt = &now

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		s.log.ErrorContext(ctx, "Error updating the secondChanceItem", "id", id, "error", err)
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return updated, nil
}

func (s *itemService) DeleteItem(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrItemNotFound) {
			s.log.ErrorContext(ctx, "secondChanceItem not found", "id", id)
		} else {
			s.log.ErrorContext(ctx, "Failed to delete secondChanceItem", "id", id, "error", err)
		}
		return err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	s.log.InfoContext(ctx, "secondChanceItem deleted successfully", "id", id)
	return nil
}

func (s *itemService) SearchItems(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	return s.repo.Search(ctx, filter)
}

// GetImage returns a stored image by its public file name.
func (s *itemService) GetImage(ctx context.Context, name string) ([]byte, string, error) {
	key := imageKey(name)
	if key == "" || key != name {
		return nil, "", apperrors.ErrFileNotFound
	}
	return s.files.Download(ctx, key)
}

// imageKey reduces a client-supplied file name to a safe object key.
func imageKey(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
