package validate

import (
	"testing"

	"github.com/danmuck/merlinctl/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type colour int

const (
	red colour = iota + 1
	green
	blue
)

func (c colour) String() string {
	switch c {
	case red:
		return "RED"
	case green:
		return "GREEN"
	case blue:
		return "BLUE"
	}
	return "colour?"
}

type perm int

const (
	permRead  perm = 1
	permWrite perm = 2
)

func (p perm) String() string {
	switch p {
	case permRead:
		return "READ"
	case permWrite:
		return "WRITE"
	}
	return "perm?"
}

var (
	colours = NewMembers("colour", red, green, blue)
	perms   = NewFlags("perm", permRead, permWrite)
)

func TestCastFailsOnUnfaithfulInput(t *testing.T) {
	testlog.Start(t)
	f, err := Cast[float64]().Translate("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	_, err = Cast[float64]().Translate("two")
	assert.ErrorIs(t, err, ErrTranslation)

	_, err = Cast[int]().Translate(nil)
	assert.ErrorIs(t, err, ErrTranslation)

	s, err := Cast[string]().Translate(12)
	require.NoError(t, err)
	assert.Equal(t, "12", s)
}

func TestLookupTranslators(t *testing.T) {
	testlog.Start(t)
	v, err := Index[string](-1).Translate([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	_, err = Index[string](2).Translate([]string{"a", "b"})
	assert.Error(t, err)

	n, err := Key[string, int]("x").Translate(map[string]int{"x": 7})
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = Key[string, int]("y").Translate(map[string]int{"x": 7})
	assert.Error(t, err)

	type pair struct{ A, B int }
	b, err := Attribute("B", func(p pair) int { return p.B }).Translate(pair{A: 1, B: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, b)
}

func TestEnumTranslators(t *testing.T) {
	testlog.Start(t)
	e, err := EnumByName(colours).Translate("green")
	require.NoError(t, err)
	assert.Equal(t, green, e)

	_, err = EnumByName(colours).Translate("PURPLE")
	assert.ErrorIs(t, err, ErrTranslation)

	e, err = EnumByValue(colours).Translate(3)
	require.NoError(t, err)
	assert.Equal(t, blue, e)
	_, err = EnumByValue(colours).Translate(4)
	assert.Error(t, err)

	name, err := EnumName[colour]().Translate(red)
	require.NoError(t, err)
	assert.Equal(t, "RED", name)

	p, ok := perms.Lookup("read|write")
	require.True(t, ok)
	assert.Equal(t, permRead|permWrite, p)
	assert.True(t, perms.Contains(3))
	assert.False(t, perms.Contains(4))
	assert.False(t, perms.Contains(0))
}

func TestBoolTranslators(t *testing.T) {
	testlog.Start(t)
	for in, want := range map[string]bool{"true": true, "TRUE": true, "False": false, "false": false} {
		got, err := ParseBool().Translate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBool().Translate("yes")
	assert.Error(t, err)

	got, err := DigitBool().Translate("1")
	require.NoError(t, err)
	assert.True(t, got)
	_, err = DigitBool().Translate("2")
	assert.Error(t, err)
}

func TestSignedIntHandlesLeadingMinus(t *testing.T) {
	testlog.Start(t)
	for in, want := range map[string]int{"42": 42, "-42": -42, " -7 ": -7, "0": 0, "-0": 0} {
		got, err := SignedInt().Translate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "-", "--1", "+1", "1.5", "abc"} {
		_, err := SignedInt().Translate(in)
		assert.Error(t, err, in)
	}
}

func TestTemplateSubstitution(t *testing.T) {
	testlog.Start(t)
	out, err := Template("SCANDETECTOR<>ENABLE", "<>").Translate("2")
	require.NoError(t, err)
	assert.Equal(t, "SCANDETECTOR2ENABLE", out)

	out, err = Template(`"{}"`, "{}").Translate("C:/data")
	require.NoError(t, err)
	assert.Equal(t, `"C:/data"`, out)
}

func TestArithmeticTranslators(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		op       BinaryOp
		v, k     int
		reversed bool
		want     int
	}{
		{Add, 3, 1, false, 4},
		{Sub, 3, 1, false, 2},
		{Sub, 3, 1, true, -2},
		{Mul, 3, 5, false, 15},
		{Div, 20, 10, false, 2},
		{FloorDiv, -7, 2, false, -4},
		{Pow, 4, 10, true, 10000},
		{BitOr, 1, 2, false, 3},
		{BitAnd, 3, 2, false, 2},
		{BitXor, 3, 1, false, 2},
	}
	for _, tc := range cases {
		got, err := Binary(tc.op, tc.k, tc.reversed).Translate(tc.v)
		require.NoError(t, err, tc.op.String())
		assert.Equal(t, tc.want, got, tc.op.String())
	}

	_, err := Binary(Div, 0, false).Translate(5)
	assert.Error(t, err)
	_, err = Binary(Div, 3, false).Translate(5)
	assert.Error(t, err, "inexact integer division")
	_, err = Binary(BitOr, 1.0, false).Translate(2.0)
	assert.Error(t, err)

	f, err := Binary(Div, 4.0, false).Translate(1.0)
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)

	n, err := Unary[int](Neg).Translate(5)
	require.NoError(t, err)
	assert.Equal(t, -5, n)
	n, err = Unary[int](Invert).Translate(0)
	require.NoError(t, err)
	assert.Equal(t, -1, n)
	_, err = Unary[float64](Invert).Translate(1)
	assert.Error(t, err)
}

func TestFormatRendersWireScalars(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in   any
		want string
	}{
		{true, "1"},
		{false, "0"},
		{12, "12"},
		{int64(-3), "-3"},
		{12.0, "12"},
		{0.25, "0.25"},
		{"x", "x"},
	}
	for _, tc := range cases {
		got, err := Format[any]().Translate(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}
