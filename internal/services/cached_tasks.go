package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/NazarKuzyk/TodoList/internal/cache"
	"github.com/NazarKuzyk/TodoList/internal/models"
)

// CachedTaskService wraps a TaskService with per-owner Redis caching. Cache
// failures fall back to the database, and concurrent list misses for the same
// owner collapse into a single query.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.TaskCache
	group       singleflight.Group
}

func NewCachedTaskService(taskService TaskService, taskCache *cache.TaskCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       taskCache,
	}
}

func (s *CachedTaskService) ListTasks(ctx context.Context, db *gorm.DB, ownerID int64) ([]models.Task, error) {
	if s.cache == nil {
		return s.taskService.ListTasks(ctx, db, ownerID)
	}

	if tasks, err := s.cache.GetOwnerTasks(ownerID); err == nil {
		return tasks, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logCacheError("list read", err)
	}

	v, err, _ := s.group.Do(fmt.Sprintf("tasks:user:%d", ownerID), func() (interface{}, error) {
		tasks, err := s.taskService.ListTasks(ctx, db, ownerID)
		if err != nil {
			return nil, err
		}

		if err := s.cache.SetOwnerTasks(ownerID, tasks); err != nil {
			logCacheError("list write", err)
		}

		return tasks, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]models.Task), nil
}

func (s *CachedTaskService) GetTask(ctx context.Context, db *gorm.DB, id int64) (models.Task, error) {
	if s.cache == nil {
		return s.taskService.GetTask(ctx, db, id)
	}

	if task, err := s.cache.GetTask(id); err == nil {
		return task, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logCacheError("task read", err)
	}

	task, err := s.taskService.GetTask(ctx, db, id)
	if err != nil {
		return task, err
	}

	if err := s.cache.SetTask(task); err != nil {
		logCacheError("task write", err)
	}

	return task, nil
}

func (s *CachedTaskService) CreateTask(ctx context.Context, db *gorm.DB, ownerID int64, input TaskInput) (models.Task, error) {
	task, err := s.taskService.CreateTask(ctx, db, ownerID, input)
	if err != nil {
		return task, err
	}

	s.invalidateOwner(task.UserID)
	return task, nil
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, db *gorm.DB, id int64, input TaskInput) (models.Task, error) {
	task, err := s.taskService.UpdateTask(ctx, db, id, input)
	if err != nil {
		return task, err
	}

	s.invalidateTask(id)
	s.invalidateOwner(task.UserID)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, db *gorm.DB, id int64) error {
	// The owner has to be read before the row disappears, or the stale list
	// key could not be found afterwards.
	var ownerID *int64
	if s.cache != nil {
		if task, err := s.taskService.GetTask(ctx, db, id); err == nil {
			ownerID = task.UserID
		}
	}

	if err := s.taskService.DeleteTask(ctx, db, id); err != nil {
		return err
	}

	s.invalidateTask(id)
	s.invalidateOwner(ownerID)
	return nil
}

func (s *CachedTaskService) invalidateTask(id int64) {
	if s.cache == nil {
		return
	}

	if err := s.cache.InvalidateTask(id); err != nil {
		logCacheError("task invalidate", err)
	}
}

func (s *CachedTaskService) invalidateOwner(ownerID *int64) {
	if s.cache == nil || ownerID == nil {
		return
	}

	if err := s.cache.InvalidateOwnerTasks(*ownerID); err != nil {
		logCacheError("list invalidate", err)
	}
}

func (s *CachedTaskService) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.Stats()
}

func logCacheError(op string, err error) {
	if errors.Is(err, cache.ErrCircuitBreakerOpen) {
		return
	}
	log.Printf("task cache %s failed: %v", op, err)
}
