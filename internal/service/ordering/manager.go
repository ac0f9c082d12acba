// Package ordering keeps sibling orders dense. Every resource kind that
// is ordered among siblings (spaces in a workspace, folders in a space,
// lists in a folder or directly in a space, fields in a template, tasks
// in a list) goes through the one manager here; the sibling set is just
// the parenthood tuple the Set adapter closes over.
package ordering

import (
	"context"
	"fmt"
	"log/slog"

	"taskhive/internal/domain"
)

// Member is one sibling: its id and current 1-based position.
type Member struct {
	ID    string
	Order int
}

// Set is one sibling set: all active resources sharing a parent.
// Implementations are thin adapters over a repository, bound to a
// concrete parent key, and must run against the caller's transaction
// when one is open in the context.
type Set interface {
	// Count returns the number of active siblings.
	Count(ctx context.Context) (int, error)

	// Members returns the active siblings with their current orders.
	Members(ctx context.Context) ([]Member, error)

	// SetOrder writes the position of one sibling.
	SetOrder(ctx context.Context, id string, order int) error
}

// SetFuncs adapts three closures to the Set interface.
type SetFuncs struct {
	CountFn    func(ctx context.Context) (int, error)
	MembersFn  func(ctx context.Context) ([]Member, error)
	SetOrderFn func(ctx context.Context, id string, order int) error
}

func (s SetFuncs) Count(ctx context.Context) (int, error)      { return s.CountFn(ctx) }
func (s SetFuncs) Members(ctx context.Context) ([]Member, error) { return s.MembersFn(ctx) }
func (s SetFuncs) SetOrder(ctx context.Context, id string, order int) error {
	return s.SetOrderFn(ctx, id, order)
}

// Manager assigns and maintains dense 1..N orders within sibling sets.
// It holds no state of its own; all reads and writes go through the Set
// and therefore join whatever transaction the calling service opened.
type Manager struct {
	logger *slog.Logger
}

// NewManager creates an ordered collection manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{logger: logger}
}

// NextOrder returns the position a newly inserted sibling takes: the
// tail of the set, count+1.
func (m *Manager) NextOrder(ctx context.Context, set Set) (int, error) {
	count, err := set.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count siblings: %w", err)
	}
	return count + 1, nil
}

// ValidateOrder fails with ErrInvalidOrder when the requested position
// lies outside [1, count].
func (m *Manager) ValidateOrder(ctx context.Context, set Set, order int) error {
	count, err := set.Count(ctx)
	if err != nil {
		return fmt.Errorf("count siblings: %w", err)
	}
	if order < 1 || order > count {
		return &domain.InvalidOrderError{Requested: order, Max: count}
	}
	return nil
}

// Reorder moves one sibling to a new position, shifting the members in
// between by one so the set stays dense. The shifts and the moved
// resource's write must land inside a single transaction; the manager
// performs them in one pass and relies on the caller's boundary.
func (m *Manager) Reorder(ctx context.Context, set Set, id string, oldOrder, newOrder int) error {
	if oldOrder == newOrder {
		return nil
	}
	if err := m.ValidateOrder(ctx, set, newOrder); err != nil {
		return err
	}

	members, err := set.Members(ctx)
	if err != nil {
		return fmt.Errorf("list siblings: %w", err)
	}

	for _, mb := range members {
		if mb.ID == id {
			continue
		}
		switch {
		case newOrder > oldOrder && mb.Order > oldOrder && mb.Order <= newOrder:
			// moved toward the tail: (old, new] shift down
			if err := set.SetOrder(ctx, mb.ID, mb.Order-1); err != nil {
				return fmt.Errorf("shift sibling %s: %w", mb.ID, err)
			}
		case newOrder < oldOrder && mb.Order >= newOrder && mb.Order < oldOrder:
			// moved toward the head: [new, old) shift up
			if err := set.SetOrder(ctx, mb.ID, mb.Order+1); err != nil {
				return fmt.Errorf("shift sibling %s: %w", mb.ID, err)
			}
		}
	}

	if err := set.SetOrder(ctx, id, newOrder); err != nil {
		return fmt.Errorf("place sibling %s: %w", id, err)
	}

	m.logger.Debug("sibling reordered", "id", id, "from", oldOrder, "to", newOrder)
	return nil
}

// CloseGap restores density after a sibling at removedOrder left the
// set: every sibling above it shifts up by one.
func (m *Manager) CloseGap(ctx context.Context, set Set, removedOrder int) error {
	members, err := set.Members(ctx)
	if err != nil {
		return fmt.Errorf("list siblings: %w", err)
	}

	for _, mb := range members {
		if mb.Order > removedOrder {
			if err := set.SetOrder(ctx, mb.ID, mb.Order-1); err != nil {
				return fmt.Errorf("shift sibling %s: %w", mb.ID, err)
			}
		}
	}
	return nil
}
