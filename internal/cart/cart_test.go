package cart

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/pricing"
)

var (
	pizza = models.MenuItem{ID: 1, Name: "Margherita Pizza", Price: decimal.RequireFromString("12.99"), Available: true}
	tea   = models.MenuItem{ID: 2, Name: "Iced Tea", Price: decimal.RequireFromString("3.99"), Available: true}
	soup  = models.MenuItem{ID: 3, Name: "Soup of the Day", Price: decimal.RequireFromString("6.50"), Available: false}
)

func TestAddItemAggregatesLines(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(pizza))
	require.NoError(t, c.AddItem(pizza))
	require.NoError(t, c.AddItem(tea))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.True(t, decimal.RequireFromString("29.97").Equal(c.Total()), "total = %s", c.Total())
	assert.Equal(t, 3, c.Count())
}

func TestAddUnavailableItemLeavesCartUnchanged(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(pizza))

	err := c.AddItem(soup)
	assert.ErrorIs(t, err, models.ErrItemUnavailable)
	assert.Len(t, c.Lines(), 1)
	assert.Equal(t, 1, c.Count())
}

func TestUpdateQuantity(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(pizza))
	require.NoError(t, c.AddItem(tea))

	c.UpdateQuantity(pizza.ID, 4)
	assert.Equal(t, 5, c.Count())

	c.UpdateQuantity(99, 3)
	assert.Equal(t, 5, c.Count(), "absent id is a no-op")

	c.UpdateQuantity(tea.ID, 0)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, pizza.ID, lines[0].ItemID)

	c.UpdateQuantity(pizza.ID, -2)
	assert.True(t, c.IsEmpty())
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(pizza))
	require.NoError(t, c.AddItem(tea))

	c.RemoveItem(42)
	assert.Len(t, c.Lines(), 2)

	c.RemoveItem(pizza.ID)
	assert.Equal(t, []Line{{ItemID: 2, Name: "Iced Tea", Price: tea.Price, Quantity: 1}}, c.Lines())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
}

func TestLinesAreCopies(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(pizza))
	lines := c.Lines()
	lines[0].Quantity = 10
	assert.Equal(t, 1, c.Count())
}

func TestQuote(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(pizza))
	require.NoError(t, c.AddItem(pizza))
	require.NoError(t, c.AddItem(tea))

	q, err := c.Quote(pricing.DefaultConfig(), models.FulfillmentDelivery)
	require.NoError(t, err)
	assert.Equal(t, "29.97", q.Subtotal.StringFixed(2))
	assert.Equal(t, "3.99", q.Fee.StringFixed(2))
	assert.Equal(t, "2.40", q.Tax.StringFixed(2))
	assert.Equal(t, "36.36", q.Total.StringFixed(2))
}

func TestSessions(t *testing.T) {
	s := NewSessions()

	require.NoError(t, s.With("alice", func(c *Cart) error { return c.AddItem(pizza) }))
	require.NoError(t, s.With("bob", func(c *Cart) error { return nil }))
	assert.Equal(t, 1, s.Len(), "empty carts are dropped")

	var count int
	require.NoError(t, s.With("alice", func(c *Cart) error {
		count = c.Count()
		return nil
	}))
	assert.Equal(t, 1, count)

	boom := errors.New("boom")
	err := s.With("alice", func(c *Cart) error { return boom })
	assert.ErrorIs(t, err, boom)

	require.NoError(t, s.With("alice", func(c *Cart) error {
		c.Clear()
		return nil
	}))
	assert.Equal(t, 0, s.Len())
}

func TestSessionsSerializeAccess(t *testing.T) {
	s := NewSessions()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.With("table-7", func(c *Cart) error { return c.AddItem(tea) })
		}()
	}
	wg.Wait()

	require.NoError(t, s.With("table-7", func(c *Cart) error {
		assert.Equal(t, 50, c.Count())
		return nil
	}))
}

func TestReprice(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(pizza))
	require.NoError(t, c.AddItem(pizza))

	fresh := pizza
	fresh.Name = "Margherita"
	fresh.Price = decimal.RequireFromString("14.00")
	c.Reprice(fresh)
	c.Reprice(tea)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Margherita", lines[0].Name)
	assert.Equal(t, "28.00", c.Total().StringFixed(2))
}

func TestSessionsAdopt(t *testing.T) {
	s := NewSessions()
	require.NoError(t, s.With("session:browser-1", func(c *Cart) error {
		if err := c.AddItem(pizza); err != nil {
			return err
		}
		return c.AddItem(tea)
	}))
	require.NoError(t, s.With("user:1", func(c *Cart) error { return c.AddItem(pizza) }))

	require.NoError(t, s.Adopt("session:browser-1", "user:1"))
	assert.Equal(t, 1, s.Len(), "the adopted cart is dropped")

	require.NoError(t, s.With("user:1", func(c *Cart) error {
		lines := c.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, pizza.ID, lines[0].ItemID)
		assert.Equal(t, 2, lines[0].Quantity)
		assert.Equal(t, tea.ID, lines[1].ItemID)
		assert.Equal(t, 1, lines[1].Quantity)
		return nil
	}))

	// Nothing left to adopt, and adopting into itself is a no-op.
	require.NoError(t, s.Adopt("session:browser-1", "user:1"))
	require.NoError(t, s.Adopt("user:1", "user:1"))
	require.NoError(t, s.With("user:1", func(c *Cart) error {
		assert.Equal(t, 3, c.Count())
		return nil
	}))
}

func TestRandomEditsKeepTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := []models.MenuItem{pizza, tea}
	want := map[int64]int{}

	c := New()
	for step := 0; step < 1000; step++ {
		item := items[rng.Intn(len(items))]
		switch rng.Intn(3) {
		case 0:
			require.NoError(t, c.AddItem(item))
			want[item.ID]++
		case 1:
			c.RemoveItem(item.ID)
			delete(want, item.ID)
		case 2:
			q := rng.Intn(6) - 1
			c.UpdateQuantity(item.ID, q)
			if _, ok := want[item.ID]; ok {
				if q <= 0 {
					delete(want, item.ID)
				} else {
					want[item.ID] = q
				}
			}
		}

		total := decimal.Zero
		count := 0
		for _, it := range items {
			total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(want[it.ID]))))
			count += want[it.ID]
		}
		require.True(t, total.Equal(c.Total()), "step %d: total %s, want %s", step, c.Total(), total)
		require.Equal(t, count, c.Count(), "step %d", step)
		require.Len(t, c.Lines(), len(want), "step %d", step)
		for _, l := range c.Lines() {
			require.GreaterOrEqual(t, l.Quantity, 1, "step %d", step)
		}
	}
}
