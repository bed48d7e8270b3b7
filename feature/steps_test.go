package feature

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/pipeline"
)

func applySteps(t *testing.T, tbl *frame.Table, steps ...pipeline.Step) *frame.Table {
	t.Helper()
	st := pipeline.NewState(tbl, nil, nil)
	for _, s := range steps {
		require.NoError(t, s.Apply(context.Background(), st), s.Name())
	}
	return st.Table
}

func TestPricingStep(t *testing.T) {
	out := applySteps(t, frame.MustNew(
		frame.NewFloat(ColTotalPrice, []float64{99, 0}, nil),
		frame.NewFloat(ColTaxes, []float64{10, 0}, nil),
	), &PricingStep{})

	assert.InDeltaSlice(t, []float64{9, 0}, floats(t, out, "price_per_tax"), 1e-9)
	assert.InDeltaSlice(t, []float64{0.1, 0}, floats(t, out, "tax_rate"), 1e-9)
	assert.InDeltaSlice(t, []float64{math.Log(100), 0}, floats(t, out, "log_price"), 1e-9)
}

func TestDurationRatio(t *testing.T) {
	out := applySteps(t, frame.MustNew(
		frame.NewString(legDuration(0), []string{"2:00", "2:00", ""}, []bool{true, true, false}),
		frame.NewString(legDuration(1), []string{"0:59", "", "1:00"}, []bool{true, false, true}),
	), &DurationStep{}, &DurationAggregateStep{})

	assert.InDeltaSlice(t, []float64{2, 1, 0}, floats(t, out, "duration_ratio"), 1e-9)
	assert.Equal(t, []float64{179, 120, 60}, floats(t, out, "total_duration"))
}

func TestColumnStepsCanceled(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewString(legDuration(0), []string{"2:00"}, nil),
		frame.NewString(legDuration(1), []string{"1:00"}, nil),
		frame.NewString("legs0_departureAt", []string{"2024-05-01T07:30:00"}, nil),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, s := range []pipeline.Step{&DurationStep{Parallelism: 1}, &TimeOfDayStep{}} {
		t.Run(s.Name(), func(t *testing.T) {
			st := pipeline.NewState(tbl, nil, nil)
			assert.ErrorIs(t, s.Apply(ctx, st), context.Canceled)
			// 取消时不写回任何列
			assert.False(t, st.Table.Has("legs0_departureAt_hour"))
			d, _ := st.Table.Col(legDuration(0))
			assert.Equal(t, frame.KindString, d.Kind)
		})
	}
}

func TestForEachColumnLimit(t *testing.T) {
	var running, peak int32
	var mu sync.Mutex
	err := forEachColumn(context.Background(), 2, 8, func(int) {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		running--
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, int32(2))
}

func TestFrequentFlyerAndFlags(t *testing.T) {
	out := applySteps(t, frame.MustNew(
		frame.NewString(ColFrequentFly, []string{"SU/S7/UT", "SU", "", ""}, []bool{true, true, true, false}),
		frame.NewString(ColCorpTariff, []string{"T1", "", "", ""}, []bool{true, false, false, false}),
		frame.NewFloat(ColAccessTP, []float64{1, 0, math.NaN(), 1}, nil),
	), &FrequentFlyerStep{}, &FlagStep{})

	assert.Equal(t, []float64{3, 1, 0, 0}, floats(t, out, "n_ff_programs"))
	assert.Equal(t, []float64{1, 0, 0, 0}, floats(t, out, "has_corporate_tariff"))

	access, _ := out.Col("has_access_tp")
	assert.Equal(t, []bool{true, true, false, true}, access.Valid)
	assert.Equal(t, 1.0, access.Nums[0])
	assert.Equal(t, 0.0, access.Nums[1])
}

func TestBaggageAndCabin(t *testing.T) {
	out := applySteps(t, frame.MustNew(
		frame.NewFloat(baggageQuantity(0, 0), []float64{1, math.NaN()}, nil),
		frame.NewFloat(baggageQuantity(1, 0), []float64{2, math.NaN()}, nil),
		frame.NewFloat(ColMiniRules0, []float64{1500, math.NaN()}, nil),
		frame.NewFloat(cabinClass(0, 0), []float64{2, math.NaN()}, nil),
		frame.NewFloat(cabinClass(1, 0), []float64{1, math.NaN()}, nil),
	), &BaggageFeeStep{}, &CabinStep{})

	assert.Equal(t, []float64{3, 0}, floats(t, out, "baggage_total"))
	assert.Equal(t, []float64{1500, 0}, floats(t, out, "total_fees"))
	assert.Equal(t, []float64{1, 0}, floats(t, out, "cabin_class_diff"))

	avg, _ := out.Col("avg_cabin_class")
	assert.Equal(t, []bool{true, false}, avg.Valid)
	assert.Equal(t, 1.5, avg.Nums[0])
}

func TestFillNull(t *testing.T) {
	mon := NewMemoryMonitor()
	out := applySteps(t, frame.MustNew(
		frame.NewFloat("x", []float64{math.NaN(), 2}, nil),
		frame.NewString("s", []string{"", "a"}, []bool{false, true}),
	), &FillNullStep{Monitor: mon})

	assert.Equal(t, []float64{0, 2}, floats(t, out, "x"))
	s, _ := out.StringCol("s").Str(0)
	assert.Equal(t, MissingString, s)

	stats, ok := mon.Stats("s")
	require.True(t, ok)
	assert.EqualValues(t, 1, stats.MissingCount)
}
