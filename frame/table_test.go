package frame

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/flightrank/core"
)

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		cols    []*Column
		wantErr string
	}{
		{
			name: "ok",
			cols: []*Column{NewString("a", []string{"x", "y"}, nil), NewFloat("b", []float64{1, 2}, nil)},
		},
		{
			name:    "duplicate",
			cols:    []*Column{NewString("a", []string{"x"}, nil), NewString("a", []string{"y"}, nil)},
			wantErr: core.ErrorCodeInvalidInput,
		},
		{
			name:    "length mismatch",
			cols:    []*Column{NewString("a", []string{"x"}, nil), NewFloat("b", []float64{1, 2}, nil)},
			wantErr: core.ErrorCodeLengthMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.cols...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, 2, tbl.Len())
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, core.GetDomainError(err).Code)
		})
	}
}

func TestTableColumns(t *testing.T) {
	tbl := MustNew(
		NewString("id", []string{"1", "2", "3"}, nil),
		NewFloat("price", []float64{10, 20, 30}, nil),
	)

	t.Run("optional column reads as nulls", func(t *testing.T) {
		c := tbl.FloatCol("taxes")
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, 3, c.NullCount())
		assert.False(t, tbl.Has("taxes"))
	})

	t.Run("set replaces in place", func(t *testing.T) {
		cp := tbl.Clone()
		cp.MustSet(NewInt("id", []float64{7, 8, 9}, nil))
		assert.Equal(t, []string{"id", "price"}, cp.Names())
		s, _ := cp.StringCol("id").Str(0)
		assert.Equal(t, "7", s)

		orig, _ := tbl.StringCol("id").Str(0)
		assert.Equal(t, "1", orig)
	})

	t.Run("require", func(t *testing.T) {
		assert.NoError(t, tbl.Require("id", "price"))
		err := tbl.Require("id", "totalPrice")
		assert.True(t, core.IsMissingColumn(err))
	})

	t.Run("select and drop", func(t *testing.T) {
		sel, err := tbl.Select("price")
		require.NoError(t, err)
		assert.Equal(t, []string{"price"}, sel.Names())

		_, err = tbl.Select("nope")
		assert.True(t, core.IsMissingColumn(err))

		cp := tbl.Clone()
		cp.Drop("price", "nope")
		assert.Equal(t, []string{"id"}, cp.Names())
	})

	t.Run("slice", func(t *testing.T) {
		s, err := tbl.Slice(1, 3)
		require.NoError(t, err)
		assert.Equal(t, 2, s.Len())
		v, _ := s.FloatCol("price").Float(0)
		assert.Equal(t, 20.0, v)

		_, err = tbl.Slice(2, 5)
		assert.True(t, core.IsInvalidInput(err))
	})
}

func TestReadWriteCSV(t *testing.T) {
	in := "Id,ranker_id,totalPrice,legs0_duration,flag\n" +
		"1,a,10.5,2:30,true\n" +
		"2,a,,1:00,false\n" +
		"3,b,7,,true\n"

	tbl, err := ReadCSV(strings.NewReader(in), WithStringColumns("Id", "ranker_id", "legs0_duration"))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	id, _ := tbl.Col("Id")
	assert.Equal(t, KindString, id.Kind)

	price, _ := tbl.Col("totalPrice")
	assert.Equal(t, KindFloat, price.Kind)
	assert.True(t, price.IsNull(1))
	assert.Zero(t, price.Nums[1])

	dur, _ := tbl.Col("legs0_duration")
	assert.Equal(t, KindString, dur.Kind)
	assert.True(t, dur.IsNull(2))

	flag, _ := tbl.Col("flag")
	assert.Equal(t, KindInt, flag.Kind)
	assert.Equal(t, []float64{1, 0, 1}, flag.Nums)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	again, err := ReadCSV(&buf, WithStringColumns("Id", "ranker_id", "legs0_duration"))
	require.NoError(t, err)
	assert.Equal(t, tbl.Names(), again.Names())
	p, _ := again.Col("totalPrice")
	assert.True(t, p.IsNull(1))
	v, _ := p.Float(0)
	assert.Equal(t, 10.5, v)
}
