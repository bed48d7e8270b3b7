package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/model"
)

func TestWrite_Curve(t *testing.T) {
	var buf bytes.Buffer
	points := CurvePoints([]float64{0.25, 0.5})
	require.NoError(t, Write(&buf, &points))
	assert.Equal(t, "k,hitrate\n1,0.25\n2,0.5\n", buf.String())
}

func TestPredictions(t *testing.T) {
	a1 := core.NewItem("1", "a")
	a1.Score, a1.Label = 0.9, 1
	a2 := core.NewItem("2", "a")
	a2.Score = 0.1
	b1 := core.NewItem("3", "b")
	b1.Score = 0.5

	got := Predictions([]*core.Item{a1, a2, b1})
	assert.Equal(t, []Prediction{
		{RankerID: "a", ID: "1", Score: 0.9, Rank: 1, Selected: 1},
		{RankerID: "a", ID: "2", Score: 0.1, Rank: 2},
		{RankerID: "b", ID: "3", Score: 0.5, Rank: 1},
	}, got)
}

func TestImportanceRoundTrip(t *testing.T) {
	rows := model.SortImportance(map[string]float64{"price_pct_rank": 12.5, "log_price": 3})
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &rows))
	assert.True(t, strings.HasPrefix(buf.String(), "feature,importance\nprice_pct_rank,12.5\n"))

	back, err := ReadImportance(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}
