package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NazarKuzyk/TodoList/internal/middleware"
	"github.com/NazarKuzyk/TodoList/internal/models"
	"github.com/NazarKuzyk/TodoList/internal/services"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

type TaskForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Status      string `form:"status" json:"status"`
	Priority    string `form:"priority" json:"priority"`
}

func (f TaskForm) input() services.TaskInput {
	return services.TaskInput{
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		Priority:    f.Priority,
	}
}

// List serves the home page data: the signed-in user's tasks, oldest first.
func (h *TaskHandler) List(c *gin.Context) {
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), h.db, ownerID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

func (h *TaskHandler) Detail(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), h.db, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateForm serves the choices the create page renders.
func (h *TaskHandler) CreateForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses":   models.StatusChoices(),
		"priorities": models.PriorityChoices(),
	})
}

func (h *TaskHandler) Create(c *gin.Context) {
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var form TaskForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request data",
			"details": err.Error(),
		})
		return
	}

	if _, err := h.taskService.CreateTask(c.Request.Context(), h.db, ownerID, form.input()); err != nil {
		handleTaskError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *TaskHandler) UpdateForm(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), h.db, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":       task,
		"statuses":   models.StatusChoices(),
		"priorities": models.PriorityChoices(),
	})
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	var form TaskForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request data",
			"details": err.Error(),
		})
		return
	}

	if _, err := h.taskService.UpdateTask(c.Request.Context(), h.db, id, form.input()); err != nil {
		handleTaskError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *TaskHandler) DeleteConfirm(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), h.db, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), h.db, id); err != nil {
		handleTaskError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// parseTaskID reads the id route param. A non-numeric id gets the same 404
// as an id that points at nothing.
func parseTaskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return 0, false
	}
	return id, true
}

func handleTaskError(c *gin.Context, err error) {
	if field, ok := taskField(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": gin.H{field: err.Error()},
		})
		return
	}

	if errors.Is(err, services.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "task not found",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "failed to process task request",
	})
}

func taskField(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrTitleRequired), errors.Is(err, services.ErrTitleTooLong):
		return "title", true
	case errors.Is(err, services.ErrInvalidStatus):
		return "status", true
	case errors.Is(err, services.ErrInvalidPriority):
		return "priority", true
	}
	return "", false
}
