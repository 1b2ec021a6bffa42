// internal/lending/domain_test.go
package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDate(t *testing.T) {
	t.Run("bare date", func(t *testing.T) {
		got, err := ParseDueDate("2026-03-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("rfc3339", func(t *testing.T) {
		got, err := ParseDueDate("2026-03-15T10:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC), got)
	})

	for _, bad := range []string{"", "soon", "15/03/2026", "2026-13-40"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseDueDate(bad)
			assert.ErrorIs(t, err, ErrInvalidDueDate)
		})
	}
}

func TestSameDay(t *testing.T) {
	noon := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(noon, noon.Add(11*time.Hour)))
	assert.True(t, SameDay(noon, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, SameDay(noon, noon.AddDate(0, 0, 1)))

	// Offsets are normalized before comparing components: 23:00+02:00 is
	// 21:00 UTC, still the 15th.
	offset := time.Date(2026, 3, 15, 23, 0, 0, 0, time.FixedZone("EET", 2*60*60))
	assert.True(t, SameDay(noon, offset))
}
