package service

import (
	"context"
	"errors"
	"strings"

	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/repository"
)

var (
	ErrCollectionExists    = errors.New("a collection with that name already exists")
	ErrCollectionNotFound  = errors.New("collection not found")
	ErrInvalidName         = errors.New("collection name is required")
	ErrItemInCollection    = errors.New("item already in collection")
	ErrItemNotInCollection = errors.New("item not in collection")
)

type CollectionService interface {
	Create(ctx context.Context, userID, name, description string) (*models.UserCollection, error)
	Update(ctx context.Context, userID, id, name, description string) (*models.UserCollection, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string) ([]models.CollectionSummary, error)
	Get(ctx context.Context, userID, id string) (*models.UserCollection, error)
	AddItem(ctx context.Context, userID, id string, item models.CollectionItem) (*models.CollectionItem, error)
	RemoveItem(ctx context.Context, userID, id string, itemID int64, mediaType string) error
}

type collectionService struct {
	repo     repository.CollectionRepository
	activity ActivityPoster
}

func NewCollectionService(repo repository.CollectionRepository, activity ActivityPoster) CollectionService {
	return &collectionService{repo: repo, activity: activity}
}

func (s *collectionService) Create(ctx context.Context, userID, name, description string) (*models.UserCollection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	c := &models.UserCollection{UserID: userID, Name: name, Description: description}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCollectionExists
		}
		return nil, err
	}
	return c, nil
}

func (s *collectionService) Update(ctx context.Context, userID, id, name, description string) (*models.UserCollection, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		c.Name = name
	}
	c.Description = description
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCollectionExists
		}
		return nil, err
	}
	return c, nil
}

func (s *collectionService) Delete(ctx context.Context, userID, id string) error {
	err := s.repo.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCollectionNotFound
	}
	return err
}

func (s *collectionService) List(ctx context.Context, userID string) ([]models.CollectionSummary, error) {
	return s.repo.ListWithCounts(ctx, userID)
}

// Get returns the collection with its items loaded.
func (s *collectionService) Get(ctx context.Context, userID, id string) (*models.UserCollection, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

func (s *collectionService) AddItem(ctx context.Context, userID, id string, item models.CollectionItem) (*models.CollectionItem, error) {
	if !models.ValidMediaType(item.MediaType) {
		return nil, ErrInvalidMediaType
	}
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	item.CollectionID = c.ID
	if err := s.repo.AddItem(ctx, &item); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrItemInCollection
		}
		return nil, err
	}

	s.activity.Post(ctx, &models.Activity{
		UserID:    userID,
		Type:      models.ActivityCollection,
		ItemID:    item.ItemID,
		MediaType: item.MediaType,
		Title:     item.Title,
		Detail:    c.Name,
	})
	return &item, nil
}

func (s *collectionService) RemoveItem(ctx context.Context, userID, id string, itemID int64, mediaType string) error {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	err = s.repo.RemoveItem(ctx, c.ID, itemID, mediaType)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrItemNotInCollection
	}
	return err
}

func (s *collectionService) owned(ctx context.Context, userID, id string) (*models.UserCollection, error) {
	c, err := s.repo.Get(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCollectionNotFound
	}
	return c, err
}
