// Package store is the host's persistence slot for diagram nodes. Each node
// keeps exactly one session.State under the plantUML slot and the state is
// always written wholesale.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corbenferris/figjam-plantuml/internal/db"
	"github.com/corbenferris/figjam-plantuml/internal/session"
)

// Slot is the key diagram state is stored under.
const Slot = "plantUML"

// ErrNotFound is returned for an unknown node id.
var ErrNotFound = errors.New("node not found")

// Node is a diagram node together with its committed state.
type Node struct {
	ID        string        `json:"id"`
	State     session.State `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Store provides CRUD operations for diagram nodes.
type Store struct {
	db *db.DB
}

// New creates a store over d.
func New(d *db.DB) *Store {
	return &Store{db: d}
}

// Create inserts a new node holding state and returns it.
func (s *Store) Create(ctx context.Context, state session.State) (*Node, error) {
	n := &Node{ID: uuid.NewString(), State: state}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshaling state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO widget_nodes (id, slot, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, Slot, string(stateJSON), n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating node: %w", err)
	}
	return n, nil
}

// Get retrieves a node by ID.
func (s *Store) Get(ctx context.Context, id string) (*Node, error) {
	n := &Node{}
	var stateJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, state, created_at, updated_at FROM widget_nodes WHERE id = ? AND slot = ?`, id, Slot,
	).Scan(&n.ID, &stateJSON, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &n.State); err != nil {
		return nil, fmt.Errorf("unmarshaling state: %w", err)
	}
	return n, nil
}

// Put replaces the state of an existing node.
func (s *Store) Put(ctx context.Context, id string, state session.State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE widget_nodes SET state = ?, updated_at = ? WHERE id = ? AND slot = ?`,
		string(stateJSON), time.Now().UTC(), id, Slot,
	)
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all nodes, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, state, created_at, updated_at FROM widget_nodes WHERE slot = ?
		 ORDER BY updated_at DESC, id`, Slot)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var result []Node
	for rows.Next() {
		var n Node
		var stateJSON string
		if err := rows.Scan(&n.ID, &stateJSON, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		if err := json.Unmarshal([]byte(stateJSON), &n.State); err != nil {
			return nil, fmt.Errorf("unmarshaling state: %w", err)
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// Delete removes a node by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM widget_nodes WHERE id = ? AND slot = ?`, id, Slot)
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
