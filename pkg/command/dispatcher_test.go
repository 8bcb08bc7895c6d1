package command_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/macrograph/pkg/command"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
	fail  map[string]error
}

func (r *recorder) Run(_ context.Context, name string, _ map[string]any) error {
	r.calls = append(r.calls, name)
	return r.fail[name]
}

func TestDispatcher_Dispatch(t *testing.T) {
	rec := &recorder{fail: map[string]error{"ghost": domain.ErrMacroNotFound}}
	d := command.NewDispatcher(rec, command.WithPacing(0))

	outcomes, err := d.Dispatch(context.Background(), `{"actions":[{"move":{}},{"ghost":{}},{},{"grow":{}}]}`)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	assert.Equal(t, []string{"move", "ghost", "grow"}, rec.calls, "failures do not stop later actions")
	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, domain.ErrMacroNotFound)
	assert.ErrorIs(t, outcomes[2].Err, command.ErrUnnamedAction)
	assert.NoError(t, outcomes[3].Err)
}

func TestDispatcher_ParseError(t *testing.T) {
	d := command.NewDispatcher(&recorder{})
	_, err := d.Dispatch(context.Background(), "nothing to do")
	assert.ErrorIs(t, err, command.ErrNoActions)
}

func TestDispatcher_Pacing(t *testing.T) {
	var stamps []time.Time
	runner := command.RunnerFunc(func(context.Context, string, map[string]any) error {
		stamps = append(stamps, time.Now())
		return nil
	})
	d := command.NewDispatcher(runner, command.WithPacing(20*time.Millisecond))

	_, err := d.Dispatch(context.Background(), `{"actions":[{"a":{}},{"b":{}}]}`)
	require.NoError(t, err)
	require.Len(t, stamps, 2)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 20*time.Millisecond)
}

func TestDispatcher_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := command.RunnerFunc(func(context.Context, string, map[string]any) error {
		cancel()
		return nil
	})
	d := command.NewDispatcher(runner, command.WithPacing(time.Hour))

	outcomes, err := d.Dispatch(ctx, `{"actions":[{"a":{}},{"b":{}}]}`)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, outcomes, 1)
}
