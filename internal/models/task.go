package models

import "time"

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"

	// DefaultStatus is stored when a task is created without an explicit
	// status. It is intentionally not one of the selectable choices; rows
	// created before a status is picked keep this value.
	DefaultStatus Status = "Incomplete"
)

// StatusChoices lists the statuses a task can be set to through a form.
func StatusChoices() []Status {
	return []Status{StatusPending, StatusCompleted}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"

	DefaultPriority = PriorityMedium
)

func PriorityChoices() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// MaxTitleLength caps task titles at the column size.
const MaxTitleLength = 200

type Task struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      *int64    `json:"user_id" gorm:"index"`
	Title       string    `json:"title" gorm:"size:200"`
	Description string    `json:"description"`
	Status      Status    `json:"status" gorm:"size:20;not null;default:'Incomplete'"`
	Priority    Priority  `json:"priority" gorm:"size:20;not null;default:'Medium'"`
	Created     time.Time `json:"created" gorm:"autoCreateTime"`
}
