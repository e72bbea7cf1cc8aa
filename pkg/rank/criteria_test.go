package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCriteria_Validate_Nil(t *testing.T) {
	var c *Criteria
	assert.NoError(t, c.Validate())
}

func TestCriteria_Validate_InvertedRanges(t *testing.T) {
	c := &Criteria{FleetSizeMin: intPtr(100), FleetSizeMax: intPtr(50)}
	assert.ErrorIs(t, c.Validate(), ErrInvalidCriteria)

	c = &Criteria{SafetyScoreMin: floatPtr(80), SafetyScoreMax: floatPtr(20)}
	assert.ErrorIs(t, c.Validate(), ErrInvalidCriteria)
}

func TestCriteria_Validate_MinRiskDomain(t *testing.T) {
	c := &Criteria{MinRiskScore: floatPtr(150)}
	assert.ErrorIs(t, c.Validate(), ErrInvalidCriteria)

	c = &Criteria{MinRiskScore: floatPtr(-1)}
	assert.ErrorIs(t, c.Validate(), ErrInvalidCriteria)

	c = &Criteria{MinRiskScore: floatPtr(75)}
	assert.NoError(t, c.Validate())
}

func TestCriteria_Validate_Mode(t *testing.T) {
	assert.NoError(t, (&Criteria{}).Validate())
	assert.NoError(t, (&Criteria{Mode: ModeAbsolute}).Validate())
	assert.NoError(t, (&Criteria{Mode: ModeRelative}).Validate())
	assert.ErrorIs(t, (&Criteria{Mode: "cohort"}).Validate(), ErrInvalidCriteria)
}

func TestCriteria_Matches_Unset(t *testing.T) {
	var c *Criteria
	assert.True(t, c.matches(testRecord("USDOT100001", "GA", 50, 70)))
	assert.True(t, (&Criteria{}).matches(testRecord("USDOT100001", "GA", 50, 70)))
}

func TestCriteria_Matches_StateFold(t *testing.T) {
	c := &Criteria{States: []string{"tx", "GA"}}
	assert.True(t, c.matches(testRecord("USDOT100001", "TX", 50, 70)))
	assert.True(t, c.matches(testRecord("USDOT100002", "GA", 50, 70)))
	assert.False(t, c.matches(testRecord("USDOT100003", "FL", 50, 70)))
}

func TestCriteria_Mode_Default(t *testing.T) {
	var c *Criteria
	assert.Equal(t, ModeAbsolute, c.mode())
	assert.Equal(t, ModeAbsolute, (&Criteria{}).mode())
	assert.Equal(t, ModeRelative, (&Criteria{Mode: ModeRelative}).mode())
}

func TestCriteria_String(t *testing.T) {
	c := &Criteria{States: []string{"TX"}, FleetSizeMin: intPtr(50)}
	s := c.String()
	assert.Contains(t, s, `"states":["TX"]`)
	assert.Contains(t, s, `"fleet_size_min":50`)
}
