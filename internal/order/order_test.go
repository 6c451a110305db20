package order

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from     Status
		want     Status
		advanced bool
	}{
		{Pending, Processing, true},
		{Processing, Shipped, true},
		{Shipped, Delivered, true},
		{Delivered, Delivered, false},
		{Completed, Completed, false},
		{Status(42), Status(42), false},
	}

	for _, tc := range tests {
		t.Run(tc.from.String(), func(t *testing.T) {
			got, ok := tc.from.Next()
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.advanced, ok)
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, Pending.IsTerminal())
	assert.False(t, Processing.IsTerminal())
	assert.False(t, Shipped.IsTerminal())
	assert.True(t, Delivered.IsTerminal())
	assert.True(t, Completed.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	for s, name := range statusNames {
		got, err := ParseStatus(name)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("LOST")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, "STATUS(9)", Status(9).String())
}

func TestTotal(t *testing.T) {
	t.Run("sums price times quantity", func(t *testing.T) {
		items := []Item{
			{Name: "Laptop", Price: 100.5, Quantity: 1},
			{Name: "Smartphone", Price: 34, Quantity: 2},
		}
		assert.Equal(t, 168.5, Total(items))
	})

	t.Run("avoids binary float drift", func(t *testing.T) {
		items := []Item{{Price: 0.1, Quantity: 3}}
		assert.Equal(t, 0.3, Total(items))
	})

	t.Run("empty order costs nothing", func(t *testing.T) {
		assert.Equal(t, 0.0, Total(nil))
	})
}

func TestOrder_Clone(t *testing.T) {
	o := Order{ID: "o-1", Items: []Item{{ID: "i-1", Name: "Pen", Price: 1, Quantity: 1}}}

	c := o.Clone()
	c.Items[0].Name = "Pencil"

	assert.Equal(t, "Pen", o.Items[0].Name)
	assert.Nil(t, Order{}.Clone().Items)
}

func TestNewID(t *testing.T) {
	format := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		id := NewID()
		require.Regexp(t, format, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s after %d draws", id, i)
		seen[id] = struct{}{}
	}
}

func TestListQuery_Normalize(t *testing.T) {
	q := ListQuery{Limit: 0, Page: -3}.Normalize()
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, DefaultPage, q.Page)

	q = ListQuery{Limit: 2, Page: 4}.Normalize()
	assert.Equal(t, 2, q.Limit)
	assert.Equal(t, 4, q.Page)
}
