package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/NazarKuzyk/TodoList/internal/models"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title is too long")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
)

// TaskInput carries the four editable task fields as submitted.
type TaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
}

// normalize trims the title, fills omitted choices with their defaults and
// rejects values outside the choice sets. Inputs are checked before any row
// is touched, so a failed call never mutates state.
func (input *TaskInput) normalize() (models.Status, models.Priority, error) {
	input.Title = strings.TrimSpace(input.Title)

	if input.Title == "" {
		return "", "", ErrTitleRequired
	}
	if utf8.RuneCountInString(input.Title) > models.MaxTitleLength {
		return "", "", ErrTitleTooLong
	}

	status := models.Status(input.Status)
	if status == "" {
		status = models.DefaultStatus
	} else if !status.Valid() {
		return "", "", ErrInvalidStatus
	}

	priority := models.Priority(input.Priority)
	if priority == "" {
		priority = models.DefaultPriority
	} else if !priority.Valid() {
		return "", "", ErrInvalidPriority
	}

	return status, priority, nil
}

type TaskService interface {
	ListTasks(ctx context.Context, db *gorm.DB, ownerID int64) ([]models.Task, error)
	GetTask(ctx context.Context, db *gorm.DB, id int64) (models.Task, error)
	CreateTask(ctx context.Context, db *gorm.DB, ownerID int64, input TaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, db *gorm.DB, id int64, input TaskInput) (models.Task, error)
	DeleteTask(ctx context.Context, db *gorm.DB, id int64) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

// ListTasks returns the owner's tasks in creation order.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, db *gorm.DB, ownerID int64) ([]models.Task, error) {
	var tasks []models.Task
	err := db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// GetTask fetches a task by id alone; it does not filter by owner.
func (s *TaskServiceImpl) GetTask(ctx context.Context, db *gorm.DB, id int64) (models.Task, error) {
	var task models.Task
	if err := db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}

	return task, nil
}

// CreateTask stores a new task for the owner. The owner always comes from the
// caller's session, never from the submitted form.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, db *gorm.DB, ownerID int64, input TaskInput) (models.Task, error) {
	status, priority, err := input.normalize()
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		UserID:      &ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
	}

	if err := db.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

// UpdateTask overwrites the four editable fields; id, owner and creation time
// are never touched.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, db *gorm.DB, id int64, input TaskInput) (models.Task, error) {
	status, priority, err := input.normalize()
	if err != nil {
		return models.Task{}, err
	}

	var task models.Task
	if err := db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Status = status
	task.Priority = priority

	err = db.WithContext(ctx).Model(&task).
		Select("title", "description", "status", "priority").
		Updates(&task).Error
	if err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, db *gorm.DB, id int64) error {
	result := db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
