package ordering

import (
	"context"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/domain"
)

// memorySet is an in-memory sibling set for exercising the manager.
type memorySet struct {
	orders map[string]int
}

func newMemorySet(ids ...string) *memorySet {
	s := &memorySet{orders: make(map[string]int)}
	for i, id := range ids {
		s.orders[id] = i + 1
	}
	return s
}

func (s *memorySet) Count(ctx context.Context) (int, error) {
	return len(s.orders), nil
}

func (s *memorySet) Members(ctx context.Context) ([]Member, error) {
	members := make([]Member, 0, len(s.orders))
	for id, order := range s.orders {
		members = append(members, Member{ID: id, Order: order})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Order < members[j].Order })
	return members, nil
}

func (s *memorySet) SetOrder(ctx context.Context, id string, order int) error {
	s.orders[id] = order
	return nil
}

func (s *memorySet) remove(id string) int {
	order := s.orders[id]
	delete(s.orders, id)
	return order
}

// assertDense checks that the orders are exactly {1..N} with no
// duplicates.
func assertDense(t *testing.T, s *memorySet) {
	t.Helper()
	seen := make(map[int]string, len(s.orders))
	for id, order := range s.orders {
		if prev, ok := seen[order]; ok {
			t.Fatalf("order %d held by both %s and %s", order, prev, id)
		}
		seen[order] = id
	}
	for i := 1; i <= len(s.orders); i++ {
		if _, ok := seen[i]; !ok {
			t.Fatalf("gap at order %d (set has %d members)", i, len(s.orders))
		}
	}
}

func testManager() *Manager {
	return NewManager(slog.Default())
}

func TestNextOrder(t *testing.T) {
	ctx := context.Background()
	m := testManager()

	empty := newMemorySet()
	next, err := m.NextOrder(ctx, empty)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	three := newMemorySet("a", "b", "c")
	next, err = m.NextOrder(ctx, three)
	require.NoError(t, err)
	assert.Equal(t, 4, next)
}

func TestValidateOrderBounds(t *testing.T) {
	ctx := context.Background()
	m := testManager()
	set := newMemorySet("a", "b", "c")

	tests := []struct {
		name    string
		order   int
		wantErr bool
	}{
		{"zero", 0, true},
		{"negative", -2, true},
		{"head", 1, false},
		{"tail", 3, false},
		{"past tail", 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateOrder(ctx, set, tt.order)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidOrder)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReorderTowardTail(t *testing.T) {
	ctx := context.Background()
	m := testManager()

	// Orders [1,2,3,4] for [A,B,C,D]; move B to 4.
	set := newMemorySet("A", "B", "C", "D")
	require.NoError(t, m.Reorder(ctx, set, "B", 2, 4))

	assert.Equal(t, 1, set.orders["A"])
	assert.Equal(t, 2, set.orders["C"])
	assert.Equal(t, 3, set.orders["D"])
	assert.Equal(t, 4, set.orders["B"])
	assertDense(t, set)
}

func TestReorderTowardHead(t *testing.T) {
	ctx := context.Background()
	m := testManager()

	set := newMemorySet("A", "B", "C", "D")
	require.NoError(t, m.Reorder(ctx, set, "D", 4, 2))

	assert.Equal(t, 1, set.orders["A"])
	assert.Equal(t, 2, set.orders["D"])
	assert.Equal(t, 3, set.orders["B"])
	assert.Equal(t, 4, set.orders["C"])
	assertDense(t, set)
}

func TestReorderSamePositionIsNoop(t *testing.T) {
	ctx := context.Background()
	m := testManager()

	set := newMemorySet("A", "B", "C")
	before := map[string]int{}
	for id, o := range set.orders {
		before[id] = o
	}

	require.NoError(t, m.Reorder(ctx, set, "B", 2, 2))
	assert.Equal(t, before, set.orders)
}

func TestReorderOutOfRange(t *testing.T) {
	ctx := context.Background()
	m := testManager()

	set := newMemorySet("A", "B", "C")
	err := m.Reorder(ctx, set, "B", 2, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	var orderErr *domain.InvalidOrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, 5, orderErr.Requested)
	assert.Equal(t, 3, orderErr.Max)
}

func TestCloseGap(t *testing.T) {
	ctx := context.Background()
	m := testManager()

	set := newMemorySet("A", "B", "C", "D")
	removed := set.remove("B")
	require.NoError(t, m.CloseGap(ctx, set, removed))

	assert.Equal(t, 1, set.orders["A"])
	assert.Equal(t, 2, set.orders["C"])
	assert.Equal(t, 3, set.orders["D"])
	assertDense(t, set)
}

func TestDensityAfterMixedSequence(t *testing.T) {
	ctx := context.Background()
	m := testManager()
	set := newMemorySet()

	insert := func(id string) {
		next, err := m.NextOrder(ctx, set)
		require.NoError(t, err)
		set.orders[id] = next
	}

	insert("a")
	insert("b")
	insert("c")
	insert("d")
	insert("e")
	assertDense(t, set)

	require.NoError(t, m.Reorder(ctx, set, "e", 5, 1))
	assertDense(t, set)

	require.NoError(t, m.CloseGap(ctx, set, set.remove("c")))
	assertDense(t, set)

	require.NoError(t, m.Reorder(ctx, set, "a", set.orders["a"], 4))
	assertDense(t, set)

	insert("f")
	assertDense(t, set)

	require.NoError(t, m.CloseGap(ctx, set, set.remove("e")))
	assertDense(t, set)
}
