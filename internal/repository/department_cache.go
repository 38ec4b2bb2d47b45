package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"appointment-backend/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const departmentKeyPrefix = "department:"

type departmentFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Department, error)
}

// CachedDepartmentRepository is a read-through Redis cache in front of the department table.
// Cache failures fall back to the database.
type CachedDepartmentRepository struct {
	next   departmentFinder
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedDepartmentRepo(next departmentFinder, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedDepartmentRepository {
	return &CachedDepartmentRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func departmentKey(id uint) string {
	return fmt.Sprintf("%s%d", departmentKeyPrefix, id)
}

// FindByID serves the department from Redis, loading and caching it on a miss
func (r *CachedDepartmentRepository) FindByID(ctx context.Context, id uint) (*models.Department, error) {
	key := departmentKey(id)

	val, err := r.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var department models.Department
		if jsonErr := json.Unmarshal([]byte(val), &department); jsonErr == nil {
			return &department, nil
		}
		r.logger.Warn("Dropping undecodable department cache entry", zap.String("key", key))
	case err != redis.Nil:
		r.logger.Warn("Department cache read failed", zap.String("key", key), zap.Error(err))
	}

	department, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(department)
	if err != nil {
		return department, nil
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("Department cache write failed", zap.String("key", key), zap.Error(err))
	}
	return department, nil
}

