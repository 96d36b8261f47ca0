package model

import "time"

// ChoreType identifies one rotation domain. The set is fixed at
// configuration time; records of unknown types land in the generic
// "tasks" collection.
type ChoreType string

const (
	ChoreKitchen  ChoreType = "kitchen"
	ChoreBathroom ChoreType = "bathroom"
	ChoreFloor    ChoreType = "floor"
	ChorePlants   ChoreType = "plants"
)

// AllChoreTypes lists every configured chore type in board order.
var AllChoreTypes = []ChoreType{ChoreKitchen, ChoreFloor, ChoreBathroom, ChorePlants}

var collectionByType = map[ChoreType]string{
	ChoreKitchen:  "kitchen-tasks",
	ChoreBathroom: "bathroom-tasks",
	ChoreFloor:    "livingroom-tasks",
	ChorePlants:   "plant-tasks",
}

// CollectionName returns the store collection for a chore type, falling
// back to the generic "tasks" collection for unknown types.
func CollectionName(t ChoreType) string {
	if name, ok := collectionByType[t]; ok {
		return name
	}
	return "tasks"
}

// Valid reports whether t is one of the configured chore types.
func (t ChoreType) Valid() bool {
	_, ok := collectionByType[t]
	return ok
}

// Task is one occurrence of a chore assignment. A nil CompletedAt marks
// the record open; a set CompletedAt closes it and records when.
type Task struct {
	ID          string     `json:"id"`
	Type        ChoreType  `json:"type"`
	Assignee    string     `json:"assignee"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Open reports whether the task has no completion timestamp.
func (t *Task) Open() bool {
	return t.CompletedAt == nil
}

// BoardEntry is the merged open-task + last-completion view for one
// chore type. Types without an open task have no entry at all.
type BoardEntry struct {
	Type          ChoreType  `json:"type"`
	Assignee      string     `json:"assignee"`
	LastCompleted *time.Time `json:"last_completed,omitempty"`
}
