package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"pending to shipped", StatusPending, StatusShipped, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"pending to delivered skips shipped", StatusPending, StatusDelivered, false},
		{"shipped to cancelled", StatusShipped, StatusCancelled, false},
		{"delivered is terminal", StatusDelivered, StatusShipped, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"unknown status", Status("refunded"), StatusShipped, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("refunded").Valid())
	assert.False(t, Status("").Valid())
}
