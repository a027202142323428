package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr(n Number) *Number { return &n }

func TestNumberCompare(t *testing.T) {
	require.Equal(t, -1, Int(1).Compare(Int(2)))
	require.Equal(t, 0, Int(2).Compare(Float(2)))
	require.Equal(t, 1, Float(2.5).Compare(Int(2)))
	require.Equal(t, int64(0), Time(time.Unix(0, 0)).I)
}

func TestRangeQueryMatchesPoints(t *testing.T) {
	q := RangeQuery{Low: ptr(Int(10)), High: ptr(Int(20)), IncludeLower: true}
	require.True(t, q.Matches(Point(Int(10))))
	require.True(t, q.Matches(Point(Int(19))))
	require.False(t, q.Matches(Point(Int(20))))
	require.False(t, q.Matches(Point(Int(9))))

	q.IncludeUpper = true
	require.True(t, q.Matches(Point(Int(20))))
}

func TestRangeQueryOpenBounds(t *testing.T) {
	before := RangeQuery{High: ptr(Int(0))}
	require.True(t, before.Matches(Point(Int(-100))))
	require.False(t, before.Matches(Point(Int(0))))

	after := RangeQuery{Low: ptr(Float(1.5)), IncludeLower: true}
	require.True(t, after.Matches(Point(Float(1.5))))
	require.True(t, after.Matches(Point(Int(1000))))
}

func TestRangeQueryMatchesIntervals(t *testing.T) {
	q := RangeQuery{Low: ptr(Int(1900)), High: ptr(Int(1950)), IncludeLower: true}

	require.True(t, q.Matches(Interval(Int(1850), Int(1900))))
	require.True(t, q.Matches(Interval(Int(1940), Int(2000))))
	require.True(t, q.Matches(Interval(Int(1800), Int(2100))))
	require.False(t, q.Matches(Interval(Int(1950), Int(1960))))
	require.False(t, q.Matches(Interval(Int(1700), Int(1899))))
}

func TestDocID(t *testing.T) {
	id, err := DocID(42)
	require.NoError(t, err)
	require.Equal(t, uint32(42), id)

	_, err = DocID(-1)
	require.Error(t, err)
	_, err = DocID(1 << 40)
	require.Error(t, err)
}
