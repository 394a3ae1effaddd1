package pricing

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(StandardDefaults(), opts...)
}

func curitibaCleaning(headcount int) PositionRequest {
	p := validPosition()
	p.Headcount = headcount
	return p
}

// Three cleaners in Curitiba against the bundled rules.
func TestAggregate_CityCleaning(t *testing.T) {
	res, err := newTestEngine().Aggregate(context.Background(), Quote{
		Positions: []PositionRequest{curitibaCleaning(3)},
	})
	require.NoError(t, err)
	require.Len(t, res.Positions, 1)

	p := res.Positions[0]
	assert.True(t, res.BundledRules)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "cct-limpeza-curitiba", p.RuleID)
	assert.Equal(t, 23, p.MatchScore)
	assert.False(t, p.FromDefaults)
	assert.Equal(t, 1720.00, p.Breakdown.BaseWage)
	assert.Greater(t, p.UnitPrice, p.Breakdown.BaseWage)
	assert.Equal(t, p.UnitPrice*3, p.TotalPrice)
	assert.Equal(t, p.Breakdown.Tax*3, p.TaxTotal)
	assert.Equal(t, p.Breakdown.Profit*3, p.ProfitTotal)
	assert.Equal(t, p.TotalPrice, res.Summary.MonthlyTotal)
}

func TestAggregate_UnhealthyOnRoleWage(t *testing.T) {
	req := curitibaCleaning(1)
	req.Unhealthy = true
	req.UnhealthyGrade = 20
	req.UnhealthyBasis = BasisRoleWage

	res, err := newTestEngine().Aggregate(context.Background(), Quote{Positions: []PositionRequest{req}})
	require.NoError(t, err)
	assert.InDelta(t, 0.20*1720, res.Positions[0].Breakdown.Additions.Unhealthy, delta)

	plain, err := newTestEngine().Aggregate(context.Background(), Quote{Positions: []PositionRequest{curitibaCleaning(1)}})
	require.NoError(t, err)
	assert.Greater(t, res.Positions[0].UnitPrice, plain.Positions[0].UnitPrice)
}

func TestAggregate_NightShiftWithoutMealBreak(t *testing.T) {
	req := curitibaCleaning(1)
	req.StartTime = "22:00"
	req.EndTime = "06:00"
	req.SuppressMealBreak = true

	res, err := newTestEngine().Aggregate(context.Background(), Quote{Positions: []PositionRequest{req}})
	require.NoError(t, err)

	add := res.Positions[0].Breakdown.Additions
	assert.Equal(t, 7.0, res.Positions[0].Breakdown.NightHours)
	assert.Greater(t, add.NightShift, 0.0)
	assert.Greater(t, add.MealBreak, 0.0)
	assert.Equal(t, (add.NightShift+add.MealBreak)/6, add.RestDayReflex)
}

func TestAggregate_MultiplePositions(t *testing.T) {
	guard := curitibaCleaning(2)
	guard.Function = FunctionSecurity
	guard.StartTime = "19:00"
	guard.EndTime = "07:00"

	res, err := newTestEngine().Aggregate(context.Background(), Quote{
		Positions: []PositionRequest{curitibaCleaning(1), guard},
	})
	require.NoError(t, err)
	require.Len(t, res.Positions, 2)

	assert.Equal(t, "cct-limpeza-curitiba", res.Positions[0].RuleID)
	assert.Equal(t, "default-seguranca-pr", res.Positions[1].RuleID)
	assert.InDelta(t, 0.30*2450, res.Positions[1].Breakdown.Additions.Hazard, delta)

	sum := res.Summary
	assert.Equal(t, res.Positions[0].TotalPrice+res.Positions[1].TotalPrice, sum.MonthlyTotal)
	assert.Equal(t, sum.MonthlyTotal*12, sum.AnnualTotal)
	assert.Equal(t, res.Positions[0].TaxTotal+res.Positions[1].TaxTotal, sum.TaxTotal)
	assert.Equal(t, res.Positions[0].ProfitTotal+res.Positions[1].ProfitTotal, sum.ProfitTotal)
}

func TestAggregate_RoleOverride(t *testing.T) {
	req := curitibaCleaning(1)
	req.Role = "Encarregado"

	res, err := newTestEngine().Aggregate(context.Background(), Quote{Positions: []PositionRequest{req}})
	require.NoError(t, err)

	b := res.Positions[0].Breakdown
	assert.Equal(t, "cct-limpeza-curitiba", res.Positions[0].RuleID)
	assert.Equal(t, 2100.00, b.BaseWage)
	assert.Equal(t, 250.00, b.RoleBonus)
	assert.InDelta(t, 2350, b.Remuneration, delta)
}

func TestAggregate_HeadcountScalesLinearly(t *testing.T) {
	e := newTestEngine()
	one, err := e.Aggregate(context.Background(), Quote{Positions: []PositionRequest{curitibaCleaning(1)}})
	require.NoError(t, err)

	for _, n := range []int{2, 5, 17} {
		res, err := e.Aggregate(context.Background(), Quote{Positions: []PositionRequest{curitibaCleaning(n)}})
		require.NoError(t, err)
		assert.Equal(t, one.Positions[0].UnitPrice, res.Positions[0].UnitPrice)
		assert.Equal(t, one.Positions[0].TotalPrice*float64(n), res.Positions[0].TotalPrice)
	}
}

func TestAggregate_NoRuleUsesDefaults(t *testing.T) {
	req := curitibaCleaning(1)
	req.Function = "LAVANDERIA"

	res, err := newTestEngine().Aggregate(context.Background(), Quote{Positions: []PositionRequest{req}})
	require.NoError(t, err)

	p := res.Positions[0]
	assert.True(t, p.FromDefaults)
	assert.Empty(t, p.RuleID)
	assert.Equal(t, StandardDefaults().WageFloor, p.Breakdown.BaseWage)
}

func TestAggregate_CallerRulesAndDefaults(t *testing.T) {
	d := StandardDefaults()
	d.WageFloor = 3000
	rules := []Rule{{ID: "sc-cleaning", State: "SC", Function: FunctionCleaning, WageFloor: 1900}}

	sc := curitibaCleaning(1)
	sc.State = "SC"
	sc.City = "Joinville"
	pr := curitibaCleaning(1)

	res, err := newTestEngine().Aggregate(context.Background(), Quote{
		Positions: []PositionRequest{sc, pr},
		Rules:     rules,
		Defaults:  &d,
	})
	require.NoError(t, err)

	assert.False(t, res.BundledRules)
	assert.Equal(t, "sc-cleaning", res.Positions[0].RuleID)
	assert.Equal(t, 1900.00, res.Positions[0].Breakdown.BaseWage)
	assert.True(t, res.Positions[1].FromDefaults)
	assert.Equal(t, 3000.00, res.Positions[1].Breakdown.BaseWage)
}

func TestAggregate_ValidationFailsBeforePricing(t *testing.T) {
	bad := curitibaCleaning(0)

	res, err := newTestEngine().Aggregate(context.Background(), Quote{
		Positions: []PositionRequest{curitibaCleaning(1), bad},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, res.Positions)
	assert.Empty(t, res.ID)
}

func TestAggregate_TaxConfigurationFailsWholeProposal(t *testing.T) {
	rules := []Rule{
		{ID: "ok", State: "PR", Function: FunctionCleaning, WageFloor: 1700},
		{ID: "bad-tax", State: "PR", Function: FunctionSecurity, WageFloor: 2400, Rates: RuleRates{ISS: ptr(0.95)}},
	}
	guard := curitibaCleaning(1)
	guard.Function = FunctionSecurity

	res, err := newTestEngine().Aggregate(context.Background(), Quote{
		Positions: []PositionRequest{curitibaCleaning(1), guard},
		Rules:     rules,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaxConfiguration)
	assert.Contains(t, err.Error(), "position 1")
	assert.Empty(t, res.Positions)
}

func TestAggregate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine().Aggregate(ctx, Quote{Positions: []PositionRequest{curitibaCleaning(1)}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate_IsDeterministic(t *testing.T) {
	e := newTestEngine(WithIDGenerator(func() string { return "fixed" }))
	q := Quote{Positions: []PositionRequest{curitibaCleaning(4)}}

	first, err := e.Aggregate(context.Background(), q)
	require.NoError(t, err)
	second, err := e.Aggregate(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "fixed", first.ID)
}

func TestAggregate_ConcurrentIDsAreUnique(t *testing.T) {
	e := newTestEngine()
	const workers = 16
	const perWorker = 25

	var (
		mu  sync.Mutex
		ids = make(map[string]struct{}, workers*perWorker)
		wg  sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				res, err := e.Aggregate(context.Background(), Quote{Positions: []PositionRequest{curitibaCleaning(1 + i%3)}})
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				ids[res.ID] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, ids, workers*perWorker)
}

func TestEngineOptions(t *testing.T) {
	rules := []Rule{
		{ID: "sp-fallback", State: "SP", Function: FunctionCleaning, WageFloor: 1600},
		{ID: "sp-roles", State: "SP", Function: FunctionCleaning, Roles: []RoleEntry{{Name: "Lider", WageFloor: 2000}}},
	}
	e := newTestEngine(
		WithHomeState("SP"),
		WithDefaultRuleID("sp-fallback"),
		WithBundledRules(rules),
	)

	req := curitibaCleaning(1)
	req.State = "RJ"
	res, err := e.Aggregate(context.Background(), Quote{Positions: []PositionRequest{req}})
	require.NoError(t, err)
	assert.Equal(t, "sp-fallback", res.Positions[0].RuleID)
	assert.Equal(t, 0, res.Positions[0].MatchScore)
	assert.True(t, res.Positions[0].FallbackRule)
	assert.False(t, res.Positions[0].FromDefaults)
	assert.Equal(t, StandardDefaults(), e.Defaults())

	req.State = "SP"
	res, err = e.Aggregate(context.Background(), Quote{Positions: []PositionRequest{req}})
	require.NoError(t, err)
	assert.Equal(t, "sp-fallback", res.Positions[0].RuleID)
	assert.False(t, res.Positions[0].FallbackRule)
}

// Security outside the home state has only a PR rule, so the designated
// cleaning rule prices it and the result says so.
func TestAggregate_DesignatedRuleIsFlagged(t *testing.T) {
	req := curitibaCleaning(1)
	req.Function = FunctionSecurity
	req.State = "SP"
	req.City = "Campinas"

	res, err := newTestEngine().Aggregate(context.Background(), Quote{Positions: []PositionRequest{req}})
	require.NoError(t, err)

	p := res.Positions[0]
	assert.Equal(t, DefaultRuleID, p.RuleID)
	assert.True(t, p.FallbackRule)
	assert.False(t, p.FromDefaults)
	assert.Zero(t, p.MatchScore)

	res, err = newTestEngine().Aggregate(context.Background(), Quote{Positions: []PositionRequest{curitibaCleaning(1)}})
	require.NoError(t, err)
	assert.False(t, res.Positions[0].FallbackRule)
}

func TestAggregate_RuleConfigurationFailsBeforePricing(t *testing.T) {
	tests := map[string]RuleAdditionalPay{
		"unhealthy without grade": {Unhealthy: true},
		"unhealthy grade 15":      {Unhealthy: true, UnhealthyGrade: 15},
		"grade without flag":      {UnhealthyGrade: 30},
	}
	for name, ap := range tests {
		t.Run(name, func(t *testing.T) {
			rules := []Rule{
				{ID: "ok", State: "PR", Function: FunctionCleaning, WageFloor: 1700},
				{ID: "bad-grade", State: "SP", Function: FunctionGardening, WageFloor: 2000, AdditionalPay: ap},
			}

			res, err := newTestEngine().Aggregate(context.Background(), Quote{
				Positions: []PositionRequest{curitibaCleaning(1)},
				Rules:     rules,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRuleConfiguration)
			assert.NotErrorIs(t, err, ErrInvalidInput)

			var rerr *RuleConfigError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, "bad-grade", rerr.RuleID)
			assert.Empty(t, res.Positions)
		})
	}
}

func TestAggregate_DefaultsTaxErrorDoesNotBlameRule(t *testing.T) {
	d := StandardDefaults()
	d.Rates.ISS = 0.95

	_, err := newTestEngine().Aggregate(context.Background(), Quote{
		Positions: []PositionRequest{curitibaCleaning(1)},
		Defaults:  &d,
	})
	var terr *TaxConfigError
	require.ErrorAs(t, err, &terr)
	assert.Empty(t, terr.RuleID)
	assert.NotContains(t, err.Error(), "cct-limpeza-curitiba")
}

func ExampleEngine_Aggregate() {
	e := NewEngine(StandardDefaults(), WithIDGenerator(func() string { return "proposal-1" }))
	res, err := e.Aggregate(context.Background(), Quote{Positions: []PositionRequest{{
		Function:  FunctionCleaning,
		State:     "PR",
		City:      "Curitiba",
		Role:      "Encarregado",
		WorkDays:  []string{"MON", "TUE", "WED", "THU", "FRI"},
		StartTime: "08:00",
		EndTime:   "17:00",
		Headcount: 2,
	}}})
	if err != nil {
		fmt.Println(err)
		return
	}
	p := res.Positions[0]
	fmt.Println(res.ID, p.RuleID, p.Breakdown.BaseWage+p.Breakdown.RoleBonus)
	// Output: proposal-1 cct-limpeza-curitiba 2350
}
