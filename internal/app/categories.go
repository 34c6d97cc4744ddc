package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"trivia-quiz-client/internal/domain"
)

// CategoryCatalog is the working category list of a settings screen.
// A failed refresh keeps whatever list was there before.
type CategoryCatalog struct {
	repo CategoryRepository
	log  zerolog.Logger

	mu         sync.RWMutex
	categories []domain.Category
}

func NewCategoryCatalog(repo CategoryRepository, log zerolog.Logger) *CategoryCatalog {
	return &CategoryCatalog{repo: repo, log: log}
}

// Refresh replaces the list with a freshly fetched one. On failure the
// previous list is kept and the error returned for information only.
func (c *CategoryCatalog) Refresh(ctx context.Context) error {
	categories, err := c.repo.GetCategories(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("keeping previous category list")
		return err
	}

	c.mu.Lock()
	c.categories = append([]domain.Category(nil), categories...)
	c.mu.Unlock()
	return nil
}

func (c *CategoryCatalog) Categories() []domain.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Category(nil), c.categories...)
}

// Name returns the display name for a category filter.
func (c *CategoryCatalog) Name(categoryID *int) string {
	if categoryID == nil {
		return domain.AnyCategoryName
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, category := range c.categories {
		if category.ID == *categoryID {
			return category.Name
		}
	}
	return domain.AnyCategoryName
}
