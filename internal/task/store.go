package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no task matches the given id.
var ErrNotFound = errors.New("task not found")

// Priority levels in descending urgency.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PriorityWeight maps a priority label to a sortable weight; unknown labels
// sort last.
func PriorityWeight(priority string) int {
	switch priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ValidPriority reports whether the label is one of the three known levels.
func ValidPriority(priority string) bool {
	return PriorityWeight(priority) > 0
}

// Item is one todo record.
type Item struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Priority  string    `json:"priority"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

const itemColumns = `id, text, priority, done, created_at`

// Store is the SQLite-backed task repository.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add inserts a new open task and returns it with its assigned id.
func (s *Store) Add(ctx context.Context, text, priority string) (*Item, error) {
	if !ValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (text, priority, done, created_at) VALUES (?, ?, 0, ?)`,
		text, priority, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading task id: %w", err)
	}

	return &Item{ID: id, Text: text, Priority: priority, CreatedAt: now}, nil
}

// Get returns the task with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM todos WHERE id = ?`, id)
	return scanItem(row)
}

// List returns all tasks in insertion order.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkDone sets the task done and returns the updated record. Marking an
// already-done task is a no-op that still returns it.
func (s *Store) MarkDone(ctx context.Context, id int64) (*Item, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE todos SET done = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("marking task done: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Toggle flips the done flag and returns the updated record.
func (s *Store) Toggle(ctx context.Context, id int64) (*Item, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET done = 1 - done WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("toggling task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the task and returns the deleted record for callers that
// need its text (profile recording, feedback prompts).
func (s *Store) Delete(ctx context.Context, id int64) (*Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("deleting task: %w", err)
	}
	return item, nil
}

// Clear removes every task and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos`)
	if err != nil {
		return 0, fmt.Errorf("clearing tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared tasks: %w", err)
	}
	return n, nil
}

// Counts returns total and completed task counts in one query.
func (s *Store) Counts(ctx context.Context) (total, completed int, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(done), 0) FROM todos`)
	if err := row.Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("counting tasks: %w", err)
	}
	return total, completed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var done int
	var createdAt string
	err := row.Scan(&item.ID, &item.Text, &item.Priority, &done, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	item.Done = done != 0
	item.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing task timestamp: %w", err)
	}
	return &item, nil
}
