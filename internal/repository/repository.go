package repository

import (
	"github.com/yukikurage/taskmanager/internal/dto"
	"github.com/yukikurage/taskmanager/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindForUser finds a task by ID among the tasks owned by userID
	FindForUser(id, userID int64) (*models.Task, error)

	// List retrieves the tasks matching filter, ordered by ID
	List(filter TaskFilter) ([]models.Task, error)

	// Update saves every column of a task
	Update(task *models.Task) error

	// Delete deletes a task
	Delete(id int64) error
}

// TaskFilter holds filtering options for listing tasks.
// Nil fields are not applied.
type TaskFilter struct {
	UserID   int64
	Status   *dto.TaskStatus
	Priority *dto.TaskPriority
	// Query matches title or description, ignoring case
	Query *string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id int64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
