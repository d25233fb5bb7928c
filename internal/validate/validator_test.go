package validate

import (
	"errors"
	"math"
	"testing"

	"github.com/danmuck/merlinctl/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeRespectsEachBoundInclusivity(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		inc  Inclusion
		v    int
		pass bool
	}{
		{IncludeBoth, 0, true},
		{IncludeBoth, 10, true},
		{IncludeLow, 0, true},
		{IncludeLow, 10, false},
		{IncludeHigh, 0, false},
		{IncludeHigh, 10, true},
		{IncludeNone, 0, false},
		{IncludeNone, 5, true},
		{IncludeNone, 10, false},
		{IncludeBoth, -1, false},
		{IncludeBoth, 11, false},
	}
	for _, tc := range cases {
		err := Range(0, 10, tc.inc).Validate(tc.v)
		if tc.pass {
			assert.NoError(t, err, "inc=%d v=%d", tc.inc, tc.v)
		} else {
			assert.ErrorIs(t, err, ErrValidation, "inc=%d v=%d", tc.inc, tc.v)
		}
	}
}

func TestRangeRejectsNaN(t *testing.T) {
	testlog.Start(t)
	require.Error(t, Range(0.0, 1.0, IncludeBoth).Validate(math.NaN()))
	require.NoError(t, LowerBound(0.0, true).Validate(1e300))
	require.Error(t, UpperBound(5, false).Validate(5))
}

func TestBitWidthBounds(t *testing.T) {
	testlog.Start(t)
	u := BitWidth[int](9, false)
	assert.EqualValues(t, 0, u.Min())
	assert.EqualValues(t, 511, u.Max())
	assert.NoError(t, u.Validate(0))
	assert.NoError(t, u.Validate(511))
	assert.Error(t, u.Validate(512))
	assert.Error(t, u.Validate(-1))

	s := BitWidth[int](8, true)
	assert.EqualValues(t, -128, s.Min())
	assert.EqualValues(t, 127, s.Max())
	assert.NoError(t, s.Validate(-128))
	assert.Error(t, s.Validate(-129))
	assert.Error(t, s.Validate(128))

	wide := BitWidth[uint64](64, false)
	assert.NoError(t, wide.Validate(math.MaxUint64))
}

func TestFactorToleratesFloatRounding(t *testing.T) {
	testlog.Start(t)
	f := Factor(0.1)
	assert.NoError(t, f.Validate(0.3))
	assert.NoError(t, f.Validate(1.7))
	assert.Error(t, f.Validate(0.35))
	assert.NoError(t, Factor(10).Validate(120))
	assert.Error(t, Factor(10).Validate(125))
	assert.NoError(t, Factor(0).Validate(0))
	assert.Error(t, Factor(0).Validate(1))
}

func TestUnionPassesWhenEitherMemberPasses(t *testing.T) {
	testlog.Start(t)
	low := Range(0, 10, IncludeBoth)
	high := Range(100, 110, IncludeBoth)
	u := Union[int](low, high)
	for _, v := range []int{-5, 0, 5, 50, 100, 111} {
		want := low.Validate(v) == nil || high.Validate(v) == nil
		assert.Equal(t, want, u.Validate(v) == nil, "v=%d", v)
	}
}

func TestCombinationModes(t *testing.T) {
	testlog.Start(t)
	even := Predicate("even", func(v int) bool { return v%2 == 0 })
	pos := Predicate("positive", func(v int) bool { return v > 0 })

	and := Combination(And, even, pos)
	or := Combination(Or, even, pos)
	xor := Combination(Xor, even, pos)

	assert.NoError(t, and.Validate(4))
	assert.Error(t, and.Validate(3))
	assert.NoError(t, or.Validate(3))
	assert.Error(t, or.Validate(-3))
	assert.NoError(t, xor.Validate(3))
	assert.NoError(t, xor.Validate(-2))
	assert.Error(t, xor.Validate(4))
	assert.Error(t, xor.Validate(-3))
}

func TestBranchRunsOnlySelectedMember(t *testing.T) {
	testlog.Start(t)
	b := Branch[int](Value(1), Value(2))
	assert.Equal(t, 0, b.Active())
	assert.NoError(t, b.Validate(1))
	assert.Error(t, b.Validate(2), "second member must not run while index 0 is active")

	require.NoError(t, b.Select(1))
	assert.NoError(t, b.Validate(2))
	assert.Error(t, b.Validate(1))

	assert.NoError(t, b.ValidateAt(0, 1))
	assert.Equal(t, 1, b.Active(), "ValidateAt must not move the selection")

	assert.ErrorIs(t, b.Select(2), ErrBranchIndex)
	assert.ErrorIs(t, b.ValidateAt(-1, 0), ErrBranchIndex)
}

func TestAllAndNot(t *testing.T) {
	testlog.Start(t)
	digits := All[rune](Container([]rune("0123456789")...))
	assert.NoError(t, digits.Validate([]rune("2024")))
	assert.NoError(t, digits.Validate(nil))
	assert.Error(t, digits.Validate([]rune("20x4")))

	notZero := Not[int](Value(0))
	assert.NoError(t, notZero.Validate(3))
	assert.Error(t, notZero.Validate(0))
}

func TestIntegerAndTypeOf(t *testing.T) {
	testlog.Start(t)
	assert.NoError(t, Integer().Validate(4))
	assert.Error(t, Integer().Validate(4.5))
	assert.Error(t, Integer().Validate(math.Inf(1)))

	assert.NoError(t, TypeOf[int]().Validate(3))
	assert.Error(t, TypeOf[int]().Validate(int64(3)))
}

func TestValidationErrorCarriesRuleAndValue(t *testing.T) {
	testlog.Start(t)
	err := Container("a", "b").Validate("c")
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "c", verr.Value)
	assert.Equal(t, "in{a,b}", verr.Rule)
}
