package facet

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
)

var testSchema = Schema{
	"year":         {Kind: KindInt},
	"price":        {Kind: KindDouble},
	"published_at": {Kind: KindDate},
	"lifespan":     {Kind: KindInt, Interval: true},
}

func TestParseParams(t *testing.T) {
	values := url.Values{
		"facet.range":                 {"{!key=decades ex=yearfq,typefq}year", "price"},
		"facet.range.start":           {"0"},
		"facet.range.end":             {"100"},
		"facet.range.gap":             {"10"},
		"f.year.facet.range.start":    {"1900"},
		"f.year.facet.range.end":      {"2000"},
		"f.year.facet.range.include":  {"lower,upper"},
		"f.year.facet.range.other":    {"before", "after"},
		"f.year.facet.range.hardend":  {"true"},
		"facet.mincount":              {"1"},
		"f.price.facet.mincount":      {"0"},
		"f.price.facet.range.gap":     {"2.5,5"},
		"f.price.facet.range.include": {"edge"},
	}

	reqs, err := ParseParams(values, testSchema)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	year := reqs[0]
	require.Equal(t, Request{
		Key:      "decades",
		Field:    "year",
		Kind:     KindInt,
		Start:    "1900",
		End:      "2000",
		Gap:      "10",
		MinCount: 1,
		Include:  IncludeLower | IncludeUpper,
		Other:    OtherBefore | OtherAfter,
		HardEnd:  true,
		Exclude:  []string{"yearfq", "typefq"},
	}, year)

	price := reqs[1]
	require.Equal(t, "price", price.Key)
	require.Equal(t, KindDouble, price.Kind)
	require.Equal(t, "0", price.Start)
	require.Equal(t, "2.5,5", price.Gap)
	require.Equal(t, 0, price.MinCount)
	require.Equal(t, IncludeEdge, price.Include)
	require.Equal(t, Other(0), price.Other)
	require.Empty(t, price.Exclude)
}

func TestParseParamsErrors(t *testing.T) {
	base := func() url.Values {
		return url.Values{
			"facet.range":       {"year"},
			"facet.range.start": {"0"},
			"facet.range.end":   {"10"},
			"facet.range.gap":   {"1"},
		}
	}

	tests := []struct {
		name   string
		mutate func(url.Values)
		want   string
	}{
		{"unknown field", func(v url.Values) { v.Set("facet.range", "title") }, "title"},
		{"missing gap", func(v url.Values) { v.Del("facet.range.gap") }, "f.year.facet.range.gap"},
		{"bad mincount", func(v url.Values) { v.Set("facet.mincount", "many") }, "many"},
		{"bad hardend", func(v url.Values) { v.Set("facet.range.hardend", "perhaps") }, "perhaps"},
		{"bad include", func(v url.Values) { v.Set("facet.range.include", "sideways") }, "sideways"},
		{"bad other", func(v url.Values) { v.Set("facet.range.other", "elsewhere") }, "elsewhere"},
		{"unterminated local params", func(v url.Values) { v.Set("facet.range", "{!key=x") }, "unterminated"},
		{"empty field", func(v url.Values) { v.Set("facet.range", "{!key=x}") }, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := base()
			tt.mutate(v)
			_, err := ParseParams(v, testSchema)
			require.ErrorIs(t, err, internalerr.ErrInvalidInput)
			require.True(t, IsClientError(err))
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseParamsNone(t *testing.T) {
	reqs, err := ParseParams(url.Values{"q": {"talo"}}, testSchema)
	require.NoError(t, err)
	require.Empty(t, reqs)
}

func TestSplitLocalParams(t *testing.T) {
	params, rest, err := SplitLocalParams(`{!key='by year' ex=a,b}year`)
	require.NoError(t, err)
	require.Equal(t, "year", rest)
	require.Equal(t, map[string]string{"key": "by year", "ex": "a,b"}, params)

	params, rest, err = SplitLocalParams("year")
	require.NoError(t, err)
	require.Nil(t, params)
	require.Equal(t, "year", rest)

	_, _, err = SplitLocalParams("{!key}year")
	require.Error(t, err)
}

func TestParseInclude(t *testing.T) {
	inc, err := ParseInclude(nil)
	require.NoError(t, err)
	require.Equal(t, IncludeLower, inc)

	inc, err = ParseInclude([]string{"ALL"})
	require.NoError(t, err)
	require.Equal(t, IncludeAll, inc)
	require.Equal(t, "lower,upper,edge,outer", inc.String())
}
