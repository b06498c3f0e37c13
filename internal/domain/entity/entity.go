// Package entity holds snapshots of the MadPlan source entities the indexer
// consumes. The entities are owned by the board service; madsearch only reads
// them, so they are plain structs hydrated from the shared store.
package entity

import "fmt"

// Kind identifies the source entity type in change events.
type Kind string

const (
	// KindBoard is a Kanban board.
	KindBoard Kind = "board"
	// KindList is a column within a board.
	KindList Kind = "list"
	// KindCard is a task card within a list.
	KindCard Kind = "card"
)

// IsValid reports whether k is a known entity kind.
func (k Kind) IsValid() bool {
	return k == KindBoard || k == KindList || k == KindCard
}

// Op is the mutation that triggered a change event.
type Op string

const (
	// OpCreate signals a newly created entity.
	OpCreate Op = "create"
	// OpUpdate signals a modified entity.
	OpUpdate Op = "update"
	// OpDelete signals a removed entity.
	OpDelete Op = "delete"
)

// IsValid reports whether o is a known operation.
func (o Op) IsValid() bool {
	return o == OpCreate || o == OpUpdate || o == OpDelete
}

// ChangeEvent is an entity-change notification emitted by the board service.
type ChangeEvent struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
	Op   Op     `json:"operation"`
}

// Validate checks the event is well-formed.
func (e ChangeEvent) Validate() error {
	if !e.Kind.IsValid() {
		return fmt.Errorf("unknown entity kind %q", e.Kind)
	}
	if e.ID == "" {
		return fmt.Errorf("entity id is required")
	}
	if !e.Op.IsValid() {
		return fmt.Errorf("unknown operation %q", e.Op)
	}
	return nil
}

// Board is a Kanban board snapshot.
type Board struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Archived    bool   `json:"archived,omitempty"`
	CreatedAt   int64  `json:"created_at"` // unix millis
	UpdatedAt   int64  `json:"updated_at,omitempty"`
}

// List is a column snapshot.
type List struct {
	ID        string `json:"id"`
	BoardID   string `json:"board_id"`
	Title     string `json:"title"`
	Position  int    `json:"position,omitempty"`
	Archived  bool   `json:"archived,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
}

// Schedule carries optional scheduling details attached to a card.
type Schedule struct {
	DueDate  int64 `json:"due_date,omitempty"` // unix millis, 0 = none
	Reminder int64 `json:"reminder,omitempty"`
}

// Card is a task card snapshot.
type Card struct {
	ID          string    `json:"id"`
	ListID      string    `json:"list_id"`
	BoardID     string    `json:"board_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority,omitempty"` // low, medium, high, urgent
	Status      string    `json:"status,omitempty"`   // workflow status (todo, doing, done...)
	Assignees   []string  `json:"assignees,omitempty"`
	Schedule    *Schedule `json:"schedule,omitempty"`
	Archived    bool      `json:"archived,omitempty"`
	CreatedAt   int64     `json:"created_at"`
	UpdatedAt   int64     `json:"updated_at,omitempty"`
}
