// Package plan maps subscription tiers to rental limits and pricing.
package plan

import (
	"time"

	"github.com/lena-biju/library-managment/model"
)

type Policy interface {
	RentalPeriod(p model.Plan) time.Duration
	MaxConcurrentRentals(p model.Plan) int
	Price(p model.Plan) float64
}

type limits struct {
	period time.Duration
	max    int
	price  float64
}

type policy struct{ table map[model.Plan]limits }

const day = 24 * time.Hour

// Default returns the standing plan table. Unknown plans fall back to the
// "none" tier rather than failing, so a bad plan value can never grant
// more than the minimum.
func Default() Policy {
	return &policy{table: map[model.Plan]limits{
		model.PlanNone:    {period: 30 * day, max: 1, price: 0},
		model.PlanNormal:  {period: 30 * day, max: 3, price: 5},
		model.PlanPremium: {period: 45 * day, max: 10, price: 10},
	}}
}

func (p *policy) lookup(plan model.Plan) limits {
	if l, ok := p.table[plan]; ok {
		return l
	}
	return p.table[model.PlanNone]
}

func (p *policy) RentalPeriod(plan model.Plan) time.Duration { return p.lookup(plan).period }
func (p *policy) MaxConcurrentRentals(plan model.Plan) int   { return p.lookup(plan).max }
func (p *policy) Price(plan model.Plan) float64              { return p.lookup(plan).price }
