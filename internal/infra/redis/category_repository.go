package redis

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-quiz-client/internal/domain"
	"trivia-quiz-client/internal/infra/memory"
)

// CategoryRepository caches the category list in Redis and falls back to a loader on cache miss.
// Categories are stored as: HSET trivia:categories {categoryID} {name}
type CategoryRepository struct {
	client *redis.Client
	loader memory.CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

const categoriesKey = "trivia:categories"

func NewCategoryRepository(client *redis.Client, loader memory.CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CategoryRepository) GetCategories(ctx context.Context) ([]domain.Category, error) {
	cached, err := r.client.HGetAll(ctx, categoriesKey).Result()
	if err == nil && len(cached) > 0 {
		return buildCategoriesFromCache(cached), nil
	}

	result, err, _ := r.sf.Do(categoriesKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := r.client.HGetAll(ctx, categoriesKey).Result()
		if err == nil && len(cached) > 0 {
			return buildCategoriesFromCache(cached), nil
		}

		categories, err := r.loader.LoadCategories(ctx)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for _, c := range categories {
			pipe.HSet(ctx, categoriesKey, strconv.Itoa(c.ID), c.Name)
		}
		if ttl > 0 {
			pipe.Expire(ctx, categoriesKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Category(nil), result.([]domain.Category)...), nil
}

func buildCategoriesFromCache(cached map[string]string) []domain.Category {
	categories := make([]domain.Category, 0, len(cached))
	for rawID, name := range cached {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			continue
		}
		categories = append(categories, domain.Category{ID: id, Name: name})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].ID < categories[j].ID
	})
	return categories
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
