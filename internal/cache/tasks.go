package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/NazarKuzyk/TodoList/internal/models"
)

func taskKey(id int64) string {
	return fmt.Sprintf("task:%d", id)
}

func ownerTasksKey(ownerID int64) string {
	return fmt.Sprintf("tasks:user:%d", ownerID)
}

// TaskCache keeps single tasks and per-owner task lists in Redis. Every call
// runs through a circuit breaker so a Redis outage degrades to database reads
// instead of failing requests.
type TaskCache struct {
	cache   *RedisCache
	breaker *CircuitBreaker
	metrics *Metrics
	ttl     time.Duration
}

func NewTaskCache(cache *RedisCache, ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &TaskCache{
		cache:   cache,
		breaker: NewCircuitBreaker(nil),
		metrics: &Metrics{},
		ttl:     ttl,
	}
}

func (c *TaskCache) GetTask(id int64) (models.Task, error) {
	var task models.Task
	err := c.executeRead(func() error {
		return c.cache.Get(taskKey(id), &task)
	})
	c.recordRead(err)
	return task, err
}

// executeRead runs a cache read through the breaker. A miss is a healthy
// answer from Redis, not a backend failure, so it must not count against
// the failure threshold.
func (c *TaskCache) executeRead(fn func() error) error {
	var missed bool
	err := c.breaker.Execute(func() error {
		err := fn()
		if errors.Is(err, ErrCacheMiss) {
			missed = true
			return nil
		}
		return err
	})
	if err == nil && missed {
		return ErrCacheMiss
	}
	return err
}

func (c *TaskCache) SetTask(task models.Task) error {
	err := c.breaker.Execute(func() error {
		return c.cache.Set(taskKey(task.ID), task, c.ttl)
	})
	if err == nil {
		c.metrics.RecordSet()
	}
	return err
}

func (c *TaskCache) GetOwnerTasks(ownerID int64) ([]models.Task, error) {
	var tasks []models.Task
	err := c.executeRead(func() error {
		return c.cache.Get(ownerTasksKey(ownerID), &tasks)
	})
	c.recordRead(err)
	return tasks, err
}

func (c *TaskCache) SetOwnerTasks(ownerID int64, tasks []models.Task) error {
	err := c.breaker.Execute(func() error {
		return c.cache.Set(ownerTasksKey(ownerID), tasks, c.ttl)
	})
	if err == nil {
		c.metrics.RecordSet()
	}
	return err
}

func (c *TaskCache) InvalidateTask(id int64) error {
	err := c.breaker.Execute(func() error {
		return c.cache.Delete(taskKey(id))
	})
	if err == nil {
		c.metrics.RecordDelete()
	}
	return err
}

func (c *TaskCache) InvalidateOwnerTasks(ownerID int64) error {
	err := c.breaker.Execute(func() error {
		return c.cache.Delete(ownerTasksKey(ownerID))
	})
	if err == nil {
		c.metrics.RecordDelete()
	}
	return err
}

func (c *TaskCache) recordRead(err error) {
	switch {
	case err == nil:
		c.metrics.RecordHit()
	case errors.Is(err, ErrCacheMiss):
		c.metrics.RecordMiss()
	default:
		c.metrics.RecordError()
	}
}

func (c *TaskCache) Health() error {
	return c.cache.Health()
}

func (c *TaskCache) Stats() map[string]interface{} {
	stats := c.metrics.Snapshot()
	stats["breaker"] = c.breaker.Stats()
	return stats
}
