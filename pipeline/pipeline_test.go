package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/flightrank/frame"
)

type recorder struct {
	steps []string
}

func (r *recorder) ObserveStep(name string, _ time.Duration) {
	r.steps = append(r.steps, name)
}

func setColumn(name string, v float64) Step {
	return StepFunc{StepName: name, Fn: func(_ context.Context, st *State) error {
		vals := make([]float64, st.Table.Len())
		for i := range vals {
			vals[i] = v
		}
		return st.Table.Set(frame.NewFloat(name, vals, nil))
	}}
}

func TestPipelineRun(t *testing.T) {
	raw := frame.MustNew(frame.NewString("Id", []string{"1", "2"}, nil))
	st := NewState(raw, nil, nil)
	obs := &recorder{}

	p := (&Pipeline{Name: "test", Observer: obs}).Append(setColumn("a", 1), setColumn("b", 2))
	require.NoError(t, p.Run(context.Background(), st))

	assert.Equal(t, []string{"Id", "a", "b"}, st.Table.Names())
	assert.Equal(t, []string{"a", "b"}, obs.steps)
	assert.False(t, raw.Has("a"))
}

func TestPipelineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	failing := StepFunc{StepName: "failing", Fn: func(context.Context, *State) error { return boom }}

	st := NewState(frame.MustNew(frame.NewString("Id", []string{"1"}, nil)), nil, nil)
	p := &Pipeline{Steps: []Step{failing, setColumn("after", 1)}}

	err := p.Run(context.Background(), st)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step failing")
	assert.False(t, st.Table.Has("after"))
}

func TestPipelineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := NewState(frame.MustNew(frame.NewString("Id", []string{"1"}, nil)), nil, nil)
	p := &Pipeline{Steps: []Step{setColumn("a", 1)}}
	assert.ErrorIs(t, p.Run(ctx, st), context.Canceled)
}

func TestStepFactory(t *testing.T) {
	f := NewStepFactory()
	f.Register("const", func(cfg map[string]interface{}) (Step, error) {
		v, _ := cfg["value"].(float64)
		return setColumn("const", v), nil
	})
	f.Register("", nil)
	assert.Equal(t, []string{"const"}, f.SupportedTypes())

	_, err := f.Build("missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "const")

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
pipeline:
  name: demo
  steps:
    - type: const
      config:
        value: 3.5
`), 0o644))

	cfg, err := LoadFromYAML(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Pipeline.Name)

	steps, err := cfg.BuildSteps(f)
	require.NoError(t, err)
	require.Len(t, steps, 1)

	st := NewState(frame.MustNew(frame.NewString("Id", []string{"1"}, nil)), nil, nil)
	require.NoError(t, steps[0].Apply(context.Background(), st))
	v, _ := st.Table.FloatCol("const").Float(0)
	assert.Equal(t, 3.5, v)

	jsonPath := filepath.Join(dir, "pipeline.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"pipeline":{"name":"j","steps":[{"type":"unknown"}]}}`), 0o644))
	cfg, err = LoadFromJSON(jsonPath)
	require.NoError(t, err)
	_, err = cfg.BuildSteps(f)
	assert.Error(t, err)
}
