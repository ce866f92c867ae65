package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lena-biju/library-managment/model"
)

func TestDefaultPolicy(t *testing.T) {
	p := Default()

	tests := []struct {
		plan   model.Plan
		period time.Duration
		max    int
		price  float64
	}{
		{model.PlanNone, 30 * day, 1, 0},
		{model.PlanNormal, 30 * day, 3, 5},
		{model.PlanPremium, 45 * day, 10, 10},
	}
	for _, tc := range tests {
		t.Run(string(tc.plan), func(t *testing.T) {
			require.Equal(t, tc.period, p.RentalPeriod(tc.plan))
			require.Equal(t, tc.max, p.MaxConcurrentRentals(tc.plan))
			require.Equal(t, tc.price, p.Price(tc.plan))
		})
	}
}

func TestUnknownPlanFallsBackToMinimum(t *testing.T) {
	p := Default()
	require.Equal(t, 1, p.MaxConcurrentRentals("gold"))
	require.Equal(t, 30*day, p.RentalPeriod("gold"))
}
