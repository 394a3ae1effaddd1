package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMatchOptions = MatchOptions{HomeState: "PR", DefaultRuleID: DefaultRuleID}

func cleaningAt(state, city, role string) PositionRequest {
	p := validPosition()
	p.State = state
	p.City = city
	p.Role = role
	return p
}

func TestMatch_NoRulesForFunction(t *testing.T) {
	req := cleaningAt("PR", "Curitiba", "")
	req.Function = "JANITORIAL"

	m := Match(req, DefaultRules(), testMatchOptions)
	assert.Nil(t, m.Rule)
	assert.False(t, m.Fallback)
}

func TestMatch_CityBeatsState(t *testing.T) {
	m := Match(cleaningAt("PR", "Curitiba", ""), DefaultRules(), testMatchOptions)
	require.NotNil(t, m.Rule)
	assert.Equal(t, "cct-limpeza-curitiba", m.Rule.ID)
	assert.Equal(t, scoreCity+scoreRoleNone, m.Score)
}

func TestMatch_StateRuleOutsideCity(t *testing.T) {
	m := Match(cleaningAt("pr", "Londrina", ""), DefaultRules(), testMatchOptions)
	require.NotNil(t, m.Rule)
	assert.Equal(t, DefaultRuleID, m.Rule.ID)
	assert.Equal(t, scoreState+scoreRoleNone, m.Score)
	assert.False(t, m.Fallback)
}

func TestMatch_RoleEntryOverridesRule(t *testing.T) {
	rules := DefaultRules()
	m := Match(cleaningAt("PR", "Curitiba", "encarregado"), rules, testMatchOptions)
	require.NotNil(t, m.Rule)

	assert.Equal(t, "cct-limpeza-curitiba", m.Rule.ID)
	assert.Equal(t, scoreCity+scoreRoleExact, m.Score)
	assert.Equal(t, "Encarregado", m.Rule.Role)
	assert.Equal(t, 2100.00, m.Rule.WageFloor)
	assert.Equal(t, 250.00, m.Rule.Bonus)

	// The input rule set is left untouched.
	assert.Equal(t, 1720.00, rules[1].WageFloor)
	assert.Empty(t, rules[1].Role)
}

func TestMatch_RoleEntryCarriesPantry(t *testing.T) {
	m := Match(cleaningAt("PR", "Curitiba", "Copeira"), DefaultRules(), testMatchOptions)
	require.NotNil(t, m.Rule)
	assert.Equal(t, 1780.00, m.Rule.WageFloor)
	assert.Equal(t, 150.00, m.Rule.PantryAllowance)
}

func TestMatch_UnknownRoleExcludesRoleRules(t *testing.T) {
	m := Match(cleaningAt("PR", "Curitiba", "Vigia"), DefaultRules(), testMatchOptions)
	require.NotNil(t, m.Rule)
	assert.Equal(t, DefaultRuleID, m.Rule.ID)
	assert.Equal(t, scoreState+scoreRoleGeneric, m.Score)
	assert.False(t, m.Fallback)
}

func TestMatch_ExactSingleRole(t *testing.T) {
	rules := []Rule{
		{ID: "generic", State: "SP", Function: FunctionCleaning, WageFloor: 1600},
		{ID: "lead", State: "SP", Function: FunctionCleaning, Role: "Lider", WageFloor: 1900},
	}
	m := Match(cleaningAt("SP", "Campinas", "LIDER"), rules, testMatchOptions)
	require.NotNil(t, m.Rule)
	assert.Equal(t, "lead", m.Rule.ID)
	assert.Equal(t, scoreState+scoreRoleExact, m.Score)
}

func TestMatch_FallsBackToDefaultRule(t *testing.T) {
	rules := []Rule{
		{ID: DefaultRuleID, State: "PR", Function: "OTHER", WageFloor: 1650},
		{ID: "sp-only", State: "SP", Function: FunctionCleaning, WageFloor: 1600},
		{ID: "rj-city", State: "RJ", City: "Niteroi", Function: FunctionCleaning, WageFloor: 1700},
	}

	m := Match(cleaningAt("RJ", "Rio de Janeiro", ""), rules, testMatchOptions)
	require.NotNil(t, m.Rule)
	assert.True(t, m.Fallback)
	assert.Equal(t, DefaultRuleID, m.Rule.ID)
	assert.Zero(t, m.Score)

	m = Match(cleaningAt("SP", "Campinas", ""), rules, testMatchOptions)
	assert.False(t, m.Fallback)
	assert.Equal(t, "sp-only", m.Rule.ID)
}

func TestMatch_NoFallbackConfigured(t *testing.T) {
	rules := []Rule{{ID: "sp-only", State: "SP", Function: FunctionCleaning}}

	m := Match(cleaningAt("RJ", "", ""), rules, MatchOptions{HomeState: "PR"})
	assert.Nil(t, m.Rule)
}

func TestMatch_NationalRuleCoversAnyState(t *testing.T) {
	rules := []Rule{{ID: "national", Function: FunctionCleaning, WageFloor: 1518}}

	m := Match(cleaningAt("AM", "Manaus", ""), rules, testMatchOptions)
	require.NotNil(t, m.Rule)
	assert.Equal(t, "national", m.Rule.ID)
	assert.Equal(t, scoreState+scoreRoleNone, m.Score)
}

func TestMatch_TieBreakIsOrderIndependent(t *testing.T) {
	national := Rule{ID: "a-national", Function: FunctionCleaning, WageFloor: 1518}
	home := Rule{ID: "z-home", State: "PR", Function: FunctionCleaning, WageFloor: 1650}

	for _, rules := range [][]Rule{{national, home}, {home, national}} {
		m := Match(cleaningAt("PR", "Maringa", ""), rules, testMatchOptions)
		require.NotNil(t, m.Rule)
		assert.Equal(t, "z-home", m.Rule.ID)
	}
}

func TestMatch_TieBreakByID(t *testing.T) {
	a := Rule{ID: "rule-a", State: "SC", Function: FunctionCleaning}
	b := Rule{ID: "rule-b", State: "SC", Function: FunctionCleaning}

	for _, rules := range [][]Rule{{a, b}, {b, a}} {
		m := Match(cleaningAt("SC", "", ""), rules, testMatchOptions)
		require.NotNil(t, m.Rule)
		assert.Equal(t, "rule-a", m.Rule.ID)
	}
}

func TestPreferOnTie(t *testing.T) {
	home := Rule{ID: "z", State: "PR"}
	other := Rule{ID: "a", State: "SP"}
	national := Rule{ID: "b"}

	assert.True(t, preferOnTie(home, other, "PR"))
	assert.False(t, preferOnTie(other, home, "PR"))
	assert.True(t, preferOnTie(other, national, "PR"))
	assert.True(t, preferOnTie(other, home, ""))
}
