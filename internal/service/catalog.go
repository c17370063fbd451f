package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/observability"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogLookup resolves catalog exercises for sessions and programs.
type CatalogLookup interface {
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetExercises returns the known exercises among ids; unknown ids are absent from the map.
	GetExercises(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Exercise, error)
}

// cachedCatalog is a read-through cache in front of the exercise repository.
// Catalog entries are never updated in place, so a TTL is the only invalidation.
type cachedCatalog struct {
	exerciseRepo repository.ExerciseRepository
	cache        *gocache.Cache
}

// NewCatalogLookup creates a CatalogLookup caching entries for ttl.
func NewCatalogLookup(exerciseRepo repository.ExerciseRepository, ttl time.Duration) CatalogLookup {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedCatalog{
		exerciseRepo: exerciseRepo,
		cache:        gocache.New(ttl, 2*ttl),
	}
}

func (c *cachedCatalog) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	if cached, ok := c.cache.Get(id.Hex()); ok {
		observability.RecordCatalogLookup(true)
		exercise := cached.(domain.Exercise)
		return &exercise, nil
	}
	observability.RecordCatalogLookup(false)

	exercise, err := c.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrExerciseNotFound
		}
		return nil, err
	}
	c.cache.SetDefault(id.Hex(), *exercise)
	return exercise, nil
}

func (c *cachedCatalog) GetExercises(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Exercise, error) {
	found := make(map[primitive.ObjectID]domain.Exercise, len(ids))
	var missing []primitive.ObjectID
	for _, id := range ids {
		if _, done := found[id]; done {
			continue
		}
		if cached, ok := c.cache.Get(id.Hex()); ok {
			observability.RecordCatalogLookup(true)
			found[id] = cached.(domain.Exercise)
			continue
		}
		observability.RecordCatalogLookup(false)
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return found, nil
	}

	exercises, err := c.exerciseRepo.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, e := range exercises {
		c.cache.SetDefault(e.ID.Hex(), e)
		found[e.ID] = e
	}
	return found, nil
}
