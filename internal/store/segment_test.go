package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

func TestCompileRules(t *testing.T) {
	where, params, err := compileRules([]entity.SegmentRule{
		{Field: "total_orders", Operator: entity.RuleGreaterThan, Value: "3"},
		{Field: "email", Operator: entity.RuleContains, Value: "@gmail.com"},
		{Field: "unsubscribed", Operator: entity.RuleEquals, Value: "0"},
	})
	require.NoError(t, err)

	assert.Equal(t, "WHERE total_orders > :ruleValue0 AND email LIKE :ruleValue1 AND unsubscribed = :ruleValue2", where)
	assert.Equal(t, "3", params["ruleValue0"])
	assert.Equal(t, "%@gmail.com%", params["ruleValue1"])
}

func TestCompileRules_Empty(t *testing.T) {
	where, params, err := compileRules(nil)
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, params)
}

func TestCompileRules_ContainsEscapesWildcards(t *testing.T) {
	// a literal % or _ in the value must match itself, not act as a
	// LIKE wildcard
	where, params, err := compileRules([]entity.SegmentRule{
		{Field: "name", Operator: entity.RuleContains, Value: "100%_off\\"},
	})
	require.NoError(t, err)
	assert.Equal(t, "WHERE name LIKE :ruleValue0", where)
	assert.Equal(t, `%100\%\_off\\%`, params["ruleValue0"])
}

func TestCompileRules_UnknownField(t *testing.T) {
	// a field outside the whitelist never reaches the SQL text
	_, _, err := compileRules([]entity.SegmentRule{
		{Field: "name; DROP TABLE clients", Operator: entity.RuleEquals, Value: "x"},
	})
	assert.ErrorIs(t, err, gerr.ErrUnknownRuleField)
}

func TestCompileRules_UnknownOperator(t *testing.T) {
	_, _, err := compileRules([]entity.SegmentRule{
		{Field: "name", Operator: entity.RuleOperator("regex"), Value: "x"},
	})
	assert.Error(t, err)
}

func TestCompileRules_LessThan(t *testing.T) {
	where, params, err := compileRules([]entity.SegmentRule{
		{Field: "total_spend", Operator: entity.RuleLessThan, Value: "100"},
	})
	require.NoError(t, err)
	assert.Equal(t, "WHERE total_spend < :ruleValue0", where)
	assert.Equal(t, "100", params["ruleValue0"])
}
