package models

import (
	"time"

	"github.com/yukikurage/taskmanager/internal/dto"
)

type Task struct {
	ID          int64            `gorm:"primarykey"`
	Title       string           `gorm:"type:varchar(255);not null"`
	Description *string          `gorm:"type:text"`
	Status      dto.TaskStatus   `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Priority    dto.TaskPriority `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	DueDate     *time.Time       `gorm:"type:date"`
	UserID      int64            `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ToDTO converts the row into its wire form.
func (t Task) ToDTO() dto.Task {
	out := dto.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		UserID:      t.UserID,
	}
	if t.DueDate != nil {
		d := dto.DateOf(*t.DueDate)
		out.DueDate = &d
	}
	return out
}

// ToDTOs converts a slice of rows, never returning nil.
func ToDTOs(tasks []Task) []dto.Task {
	out := make([]dto.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ToDTO())
	}
	return out
}
