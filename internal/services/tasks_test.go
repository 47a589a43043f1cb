package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NazarKuzyk/TodoList/internal/database"
	"github.com/NazarKuzyk/TodoList/internal/models"
	"github.com/NazarKuzyk/TodoList/internal/services"
)

func openTestDB(t testing.TB) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// A second pooled connection would see its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service services.TaskService

	aliceID int64
	bobID   int64
}

func (suite *TaskServiceTestSuite) SetupSuite() {
	suite.db = openTestDB(suite.T())
	suite.service = services.NewTaskService()
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM tasks")
	suite.db.Exec("DELETE FROM users")

	alice := models.User{Username: "alice", Password: "hash"}
	bob := models.User{Username: "bob", Password: "hash"}
	suite.Require().NoError(suite.db.Create(&alice).Error)
	suite.Require().NoError(suite.db.Create(&bob).Error)

	suite.aliceID = alice.ID
	suite.bobID = bob.ID
}

func (suite *TaskServiceTestSuite) TestCreateTask_Defaults() {
	ctx := context.Background()

	task, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{
		Title: "Buy groceries",
	})
	assert.NoError(suite.T(), err)
	assert.NotZero(suite.T(), task.ID)
	assert.Equal(suite.T(), "Buy groceries", task.Title)
	assert.Equal(suite.T(), models.DefaultStatus, task.Status)
	assert.Equal(suite.T(), models.DefaultPriority, task.Priority)
	assert.False(suite.T(), task.Created.IsZero())

	suite.Require().NotNil(task.UserID)
	assert.Equal(suite.T(), suite.aliceID, *task.UserID)
}

func (suite *TaskServiceTestSuite) TestCreateTask_OwnerComesFromCaller() {
	ctx := context.Background()

	task, err := suite.service.CreateTask(ctx, suite.db, suite.bobID, services.TaskInput{
		Title:    "Bob's task",
		Status:   string(models.StatusPending),
		Priority: string(models.PriorityHigh),
	})
	assert.NoError(suite.T(), err)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	suite.Require().NotNil(stored.UserID)
	assert.Equal(suite.T(), suite.bobID, *stored.UserID)
	assert.Equal(suite.T(), models.StatusPending, stored.Status)
	assert.Equal(suite.T(), models.PriorityHigh, stored.Priority)
}

func (suite *TaskServiceTestSuite) TestCreateTask_TrimsTitle() {
	ctx := context.Background()

	task, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{
		Title: "  padded title  ",
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "padded title", task.Title)
}

func (suite *TaskServiceTestSuite) TestCreateTask_ValidationErrors() {
	ctx := context.Background()

	tests := []struct {
		name  string
		input services.TaskInput
		want  error
	}{
		{
			name:  "EmptyTitle",
			input: services.TaskInput{Title: ""},
			want:  services.ErrTitleRequired,
		},
		{
			name:  "WhitespaceTitle",
			input: services.TaskInput{Title: "   "},
			want:  services.ErrTitleRequired,
		},
		{
			name:  "TitleTooLong",
			input: services.TaskInput{Title: strings.Repeat("x", 201)},
			want:  services.ErrTitleTooLong,
		},
		{
			name:  "UnknownStatus",
			input: services.TaskInput{Title: "ok", Status: "Done"},
			want:  services.ErrInvalidStatus,
		},
		{
			name:  "DefaultStatusIsNotSelectable",
			input: services.TaskInput{Title: "ok", Status: "Incomplete"},
			want:  services.ErrInvalidStatus,
		},
		{
			name:  "UnknownPriority",
			input: services.TaskInput{Title: "ok", Priority: "Urgent"},
			want:  services.ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			_, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count, "rejected inputs must not create rows")
}

func (suite *TaskServiceTestSuite) TestCreateTask_TitleLengthCountsRunes() {
	ctx := context.Background()

	// 200 multi-byte runes are within the limit even though the byte
	// length is far over 200.
	title := strings.Repeat("å", 200)
	_, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{Title: title})
	assert.NoError(suite.T(), err)

	_, err = suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{
		Title: strings.Repeat("å", 201),
	})
	assert.ErrorIs(suite.T(), err, services.ErrTitleTooLong)
}

func (suite *TaskServiceTestSuite) TestListTasks_FiltersByOwner() {
	ctx := context.Background()

	_, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{Title: "Task 1"})
	suite.Require().NoError(err)
	_, err = suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{Title: "Task 2"})
	suite.Require().NoError(err)
	_, err = suite.service.CreateTask(ctx, suite.db, suite.bobID, services.TaskInput{Title: "Other User Task"})
	suite.Require().NoError(err)

	tasks, err := suite.service.ListTasks(ctx, suite.db, suite.aliceID)
	assert.NoError(suite.T(), err)
	suite.Require().Len(tasks, 2)
	assert.Equal(suite.T(), "Task 1", tasks[0].Title)
	assert.Equal(suite.T(), "Task 2", tasks[1].Title)

	tasks, err = suite.service.ListTasks(ctx, suite.db, suite.bobID)
	assert.NoError(suite.T(), err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Other User Task", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestListTasks_OrdersByCreationThenID() {
	ctx := context.Background()

	// Inserted in one burst the rows share a creation instant, so the id
	// breaks the tie and the list keeps insertion order.
	titles := []string{"first", "second", "third", "fourth"}
	for _, title := range titles {
		_, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{Title: title})
		suite.Require().NoError(err)
	}

	tasks, err := suite.service.ListTasks(ctx, suite.db, suite.aliceID)
	assert.NoError(suite.T(), err)
	suite.Require().Len(tasks, len(titles))
	for i, title := range titles {
		assert.Equal(suite.T(), title, tasks[i].Title)
	}
}

func (suite *TaskServiceTestSuite) TestListTasks_EmptyForNewUser() {
	ctx := context.Background()

	tasks, err := suite.service.ListTasks(ctx, suite.db, suite.aliceID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), tasks)
}

func (suite *TaskServiceTestSuite) TestGetTask() {
	ctx := context.Background()

	created, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{Title: "find me"})
	suite.Require().NoError(err)

	task, err := suite.service.GetTask(ctx, suite.db, created.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), created.ID, task.ID)
	assert.Equal(suite.T(), "find me", task.Title)
}

func (suite *TaskServiceTestSuite) TestGetTask_NotFound() {
	ctx := context.Background()

	_, err := suite.service.GetTask(ctx, suite.db, 99999)
	assert.ErrorIs(suite.T(), err, services.ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestGetTask_DoesNotFilterByOwner() {
	ctx := context.Background()

	created, err := suite.service.CreateTask(ctx, suite.db, suite.bobID, services.TaskInput{Title: "bob's"})
	suite.Require().NoError(err)

	// Detail reads are keyed by id alone; any authenticated user reaches
	// any row.
	task, err := suite.service.GetTask(ctx, suite.db, created.ID)
	assert.NoError(suite.T(), err)
	suite.Require().NotNil(task.UserID)
	assert.Equal(suite.T(), suite.bobID, *task.UserID)
}

func (suite *TaskServiceTestSuite) TestUpdateTask() {
	ctx := context.Background()

	created, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{
		Title:       "before",
		Description: "old",
	})
	suite.Require().NoError(err)

	updated, err := suite.service.UpdateTask(ctx, suite.db, created.ID, services.TaskInput{
		Title:       "after",
		Description: "new",
		Status:      string(models.StatusCompleted),
		Priority:    string(models.PriorityLow),
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "after", updated.Title)
	assert.Equal(suite.T(), "new", updated.Description)
	assert.Equal(suite.T(), models.StatusCompleted, updated.Status)
	assert.Equal(suite.T(), models.PriorityLow, updated.Priority)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, created.ID).Error)
	assert.Equal(suite.T(), "after", stored.Title)
	assert.Equal(suite.T(), models.StatusCompleted, stored.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_LeavesIdentityAlone() {
	ctx := context.Background()

	created, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{Title: "original"})
	suite.Require().NoError(err)

	var before models.Task
	suite.Require().NoError(suite.db.First(&before, created.ID).Error)

	_, err = suite.service.UpdateTask(ctx, suite.db, created.ID, services.TaskInput{
		Title:    "renamed",
		Status:   string(models.StatusPending),
		Priority: string(models.PriorityHigh),
	})
	suite.Require().NoError(err)

	var after models.Task
	suite.Require().NoError(suite.db.First(&after, created.ID).Error)

	assert.Equal(suite.T(), before.ID, after.ID)
	suite.Require().NotNil(after.UserID)
	assert.Equal(suite.T(), *before.UserID, *after.UserID)
	assert.True(suite.T(), before.Created.Equal(after.Created), "creation time must survive updates")
}

func (suite *TaskServiceTestSuite) TestUpdateTask_EmptyEnumFieldsResetToDefaults() {
	ctx := context.Background()

	created, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{
		Title:    "task",
		Status:   string(models.StatusCompleted),
		Priority: string(models.PriorityHigh),
	})
	suite.Require().NoError(err)

	updated, err := suite.service.UpdateTask(ctx, suite.db, created.ID, services.TaskInput{Title: "task"})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.DefaultStatus, updated.Status)
	assert.Equal(suite.T(), models.DefaultPriority, updated.Priority)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ValidationFailureLeavesRowUntouched() {
	ctx := context.Background()

	created, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{
		Title:       "keep me",
		Description: "intact",
	})
	suite.Require().NoError(err)

	_, err = suite.service.UpdateTask(ctx, suite.db, created.ID, services.TaskInput{
		Title:  "changed",
		Status: "NotAStatus",
	})
	assert.ErrorIs(suite.T(), err, services.ErrInvalidStatus)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, created.ID).Error)
	assert.Equal(suite.T(), "keep me", stored.Title)
	assert.Equal(suite.T(), "intact", stored.Description)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_NotFound() {
	ctx := context.Background()

	_, err := suite.service.UpdateTask(ctx, suite.db, 99999, services.TaskInput{Title: "ghost"})
	assert.ErrorIs(suite.T(), err, services.ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestDeleteTask() {
	ctx := context.Background()

	created, err := suite.service.CreateTask(ctx, suite.db, suite.aliceID, services.TaskInput{Title: "doomed"})
	suite.Require().NoError(err)

	err = suite.service.DeleteTask(ctx, suite.db, created.ID)
	assert.NoError(suite.T(), err)

	_, err = suite.service.GetTask(ctx, suite.db, created.ID)
	assert.ErrorIs(suite.T(), err, services.ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_NotFound() {
	ctx := context.Background()

	err := suite.service.DeleteTask(ctx, suite.db, 99999)
	assert.ErrorIs(suite.T(), err, services.ErrTaskNotFound)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

func BenchmarkCreateTask(b *testing.B) {
	db := openTestDB(b)
	service := services.NewTaskService()
	ctx := context.Background()

	user := models.User{Username: "bench", Password: "hash"}
	db.Create(&user)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = service.CreateTask(ctx, db, user.ID, services.TaskInput{Title: "benchmark task"})
	}
}

func BenchmarkListTasks(b *testing.B) {
	db := openTestDB(b)
	service := services.NewTaskService()
	ctx := context.Background()

	user := models.User{Username: "bench", Password: "hash"}
	db.Create(&user)
	for i := 0; i < 50; i++ {
		_, _ = service.CreateTask(ctx, db, user.ID, services.TaskInput{Title: "benchmark task"})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = service.ListTasks(ctx, db, user.ID)
	}
}
