package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-quiz-client/internal/domain"
)

// CategoryLoader fetches the category list from the trivia API.
type CategoryLoader interface {
	LoadCategories(ctx context.Context) ([]domain.Category, error)
}

const categoriesKey = "categories"

// CategoryRepository caches the category list with a TTL so concurrent
// settings screens share one API call.
type CategoryRepository struct {
	loader CategoryLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu         sync.RWMutex
	categories []domain.Category
	expiresAt  time.Time
}

func NewCategoryRepository(loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CategoryRepository) GetCategories(ctx context.Context) ([]domain.Category, error) {
	if categories, ok := r.cached(r.clock()); ok {
		return categories, nil
	}

	result, err, _ := r.sf.Do(categoriesKey, func() (interface{}, error) {
		now := r.clock()
		if categories, ok := r.cached(now); ok {
			return categories, nil
		}

		categories, err := r.loader.LoadCategories(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.categories = categories
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Category(nil), result.([]domain.Category)...), nil
}

func (r *CategoryRepository) cached(now time.Time) ([]domain.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.categories == nil || !r.expiresAt.After(now) {
		return nil, false
	}
	return append([]domain.Category(nil), r.categories...), true
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
