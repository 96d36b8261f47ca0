package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/woutervis/wotohe/internal/model"
)

// openBatchLimit bounds the candidate batch fetched when looking for the
// open task of a collection. The open record is found by filtering the
// batch in Go for a missing completed_at; the query layer is written
// against a store that cannot ask for "field is absent" directly.
const openBatchLimit = 50

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, type, assignee, completed_at, created_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var completedAt sql.NullTime
	var createdAt sql.NullTime

	err := scanner.Scan(&t.ID, &t.Type, &t.Assignee, &completedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if createdAt.Valid {
		t.CreatedAt = &createdAt.Time
	}
	return &t, nil
}

// Create inserts a new open task for the given type and returns it.
// The store assigns the record ID.
func (s *TaskStore) Create(choreType model.ChoreType, assignee string) (*model.Task, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO tasks (id, collection, type, assignee, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, model.CollectionName(choreType), string(choreType), assignee, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Open returns the open task for a chore type, or nil when there is
// none. If more than one record is open (a violated invariant, possible
// under racing completions) the first one in the batch wins.
func (s *TaskStore) Open(choreType model.ChoreType) (*model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE collection = ? LIMIT ?`,
		model.CollectionName(choreType), openBatchLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query open tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if t.Open() {
			return t, nil
		}
	}
	return nil, rows.Err()
}

// LastCompleted returns the most recent completion time among closed
// records for a chore type, or nil when nothing was ever completed.
func (s *TaskStore) LastCompleted(choreType model.ChoreType) (*time.Time, error) {
	var completedAt time.Time
	err := s.db.QueryRow(
		`SELECT completed_at FROM tasks
		 WHERE collection = ? AND completed_at IS NOT NULL
		 ORDER BY completed_at DESC LIMIT 1`,
		model.CollectionName(choreType),
	).Scan(&completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last completed: %w", err)
	}
	return &completedAt, nil
}

// LatestByCreated returns the most recently created record for a chore
// type regardless of open/closed state, or nil when the collection is
// empty. Records without a created_at sort last.
func (s *TaskStore) LatestByCreated(choreType model.ChoreType) (*model.Task, error) {
	row := s.db.QueryRow(
		`SELECT `+taskCols+` FROM tasks WHERE collection = ?
		 ORDER BY created_at DESC LIMIT 1`,
		model.CollectionName(choreType),
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest task: %w", err)
	}
	return t, nil
}

// Close stamps a completion time onto a task, closing it. Closing an
// unknown ID is an error; closing an already-closed task overwrites the
// timestamp (no conditional write, see the task package for why).
func (s *TaskStore) Close(id string, completedAt time.Time) error {
	result, err := s.db.Exec(
		`UPDATE tasks SET completed_at = ? WHERE id = ?`,
		completedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("close task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("close task rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("close task: no task with id %s", id)
	}
	return nil
}

// CountForType returns the number of records in a chore type's
// collection, open or closed.
func (s *TaskStore) CountForType(choreType model.ChoreType) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE collection = ?`,
		model.CollectionName(choreType),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}
