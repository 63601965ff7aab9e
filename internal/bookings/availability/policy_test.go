package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAdmissible(t *testing.T) {
	for capacity := 1; capacity <= 12; capacity++ {
		for existing := 0; existing <= 15; existing++ {
			assert.Equal(t, existing < capacity, IsAdmissible(existing, capacity),
				"existing=%d capacity=%d", existing, capacity)
		}
	}
}

func TestIsAdmissible_ZeroCapacity(t *testing.T) {
	for existing := 0; existing < 5; existing++ {
		assert.False(t, IsAdmissible(existing, 0))
	}
	assert.False(t, IsAdmissible(0, -3))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		count    int
		capacity int
		want     DayStatus
	}{
		{0, 10, StatusAvailable},
		{6, 10, StatusAvailable},
		{7, 10, StatusWarning},
		{9, 10, StatusWarning},
		{10, 10, StatusFull},
		{12, 10, StatusFull},
		{0, 1, StatusAvailable},
		{1, 1, StatusFull},
		{2, 3, StatusWarning},
		{0, 0, StatusFull},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.count, tt.capacity), "count=%d capacity=%d", tt.count, tt.capacity)
	}
}
