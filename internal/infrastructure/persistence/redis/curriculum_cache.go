package redis

import (
	"context"
	"time"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
)

// CurriculumCache implements curriculum.TreeCache on top of Cache.
type CurriculumCache struct {
	cache *Cache
}

var _ curriculum.TreeCache = (*CurriculumCache)(nil)

// NewCurriculumCache creates a new CurriculumCache.
func NewCurriculumCache(cache *Cache) *CurriculumCache {
	return &CurriculumCache{cache: cache}
}

// GetTree returns the cached tree or ErrCacheMiss.
func (c *CurriculumCache) GetTree(ctx context.Context) (curriculum.Tree, error) {
	var tree curriculum.Tree
	if err := c.cache.Get(ctx, CurriculumTreeKey(), &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Generation returns the current catalog generation.
func (c *CurriculumCache) Generation(ctx context.Context) (int64, error) {
	return c.cache.Version(ctx, CurriculumGenerationKey())
}

// SetTree stores the tree if the catalog is still at generation. A zero ttl
// uses TTLCurriculumTree.
func (c *CurriculumCache) SetTree(ctx context.Context, tree curriculum.Tree, generation int64, ttl time.Duration) (bool, error) {
	if ttl == 0 {
		ttl = TTLCurriculumTree
	}
	if tree == nil {
		tree = curriculum.Tree{}
	}
	return c.cache.SetIfVersion(ctx, CurriculumTreeKey(), CurriculumGenerationKey(), generation, tree, ttl)
}

// InvalidateTree bumps the generation and drops the cached tree.
func (c *CurriculumCache) InvalidateTree(ctx context.Context) error {
	return c.cache.BumpVersion(ctx, CurriculumGenerationKey(), CurriculumTreeKey())
}
