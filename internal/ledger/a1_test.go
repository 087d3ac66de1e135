package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want Range
	}{
		{"A:N", Range{FirstCol: 0, LastCol: 13}},
		{"K:K", Range{FirstCol: 10, LastCol: 10}},
		{"H5", Range{FirstCol: 7, LastCol: 7, FirstRow: 5, LastRow: 5}},
		{"A2:N2", Range{FirstCol: 0, LastCol: 13, FirstRow: 2, LastRow: 2}},
		{"A2:N", Range{FirstCol: 0, LastCol: 13, FirstRow: 2}},
		{"Sheet1!A1:M1", Range{FirstCol: 0, LastCol: 12, FirstRow: 1, LastRow: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	for _, in := range []string{"", "H", "N:A", "A5:B2", "1:2", "A0"} {
		_, err := ParseRange(in)
		assert.Error(t, err, in)
	}
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "A", ColumnName(0))
	assert.Equal(t, "N", ColumnName(13))
	assert.Equal(t, "Z", ColumnName(25))
	assert.Equal(t, "AA", ColumnName(26))
	assert.Equal(t, 27, ColumnIndex("AB"))
	assert.Equal(t, 7, ColumnIndex("h"))
}

func TestRange_String(t *testing.T) {
	assert.Equal(t, "H5", Range{FirstCol: 7, LastCol: 7, FirstRow: 5, LastRow: 5}.String())
	assert.Equal(t, "A:N", Range{FirstCol: 0, LastCol: 13}.String())
	assert.Equal(t, "A2:M", Range{FirstCol: 0, LastCol: 12, FirstRow: 2}.String())
}

func TestGrid_ReadTrimsLikeSheets(t *testing.T) {
	g := Grid{
		{"h1", "h2", "h3"},
		{"a", "", ""},
		{},
		{"b", "x", ""},
		{"", "", ""},
	}

	got := g.Read(Range{FirstCol: 0, LastCol: 2})
	assert.Equal(t, [][]string{{"h1", "h2", "h3"}, {"a"}, nil, {"b", "x"}}, got)

	col := g.Read(Range{FirstCol: 1, LastCol: 1})
	assert.Equal(t, [][]string{{"h2"}, nil, nil, {"x"}}, col)
}

func TestGrid_ReadCopies(t *testing.T) {
	g := Grid{{"a", "b"}}
	out := g.Read(Range{FirstCol: 0, LastCol: 1})
	out[0][0] = "changed"
	assert.Equal(t, "a", g[0][0])
}

func TestGrid_WriteGrows(t *testing.T) {
	g := Grid{{"h"}}
	g, touched := g.Write(Range{FirstCol: 7, LastCol: 7, FirstRow: 3, LastRow: 3}, [][]string{{"2026-01-01"}})

	require.Len(t, g, 3)
	assert.Equal(t, []int{3}, touched)
	assert.Equal(t, "2026-01-01", g[2][7])
	assert.Len(t, g[2], 8)
}

func TestGrid_DeleteRows(t *testing.T) {
	g := Grid{{"h"}, {"1"}, {"2"}, {"3"}, {"4"}}

	g = g.DeleteRows(2, 3)
	assert.Equal(t, Grid{{"h"}, {"3"}, {"4"}}, g)

	g = g.DeleteRows(3, 10)
	assert.Equal(t, Grid{{"h"}, {"3"}}, g)

	g = g.DeleteRows(5, 6)
	assert.Len(t, g, 2)
}
