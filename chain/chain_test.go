package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/pancakes-web/pancakes/errors"
)

func TestComposeThreadsValues(t *testing.T) {
	double := func(_ context.Context, in interface{}) (interface{}, error) {
		return in.(int) * 2, nil
	}
	addOne := func(_ context.Context, in interface{}) (interface{}, error) {
		return in.(int) + 1, nil
	}

	method := Compose(double, addOne, double)

	out, err := method(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 14, out) // ((3*2)+1)*2
}

func TestComposeShortCircuitsOnError(t *testing.T) {
	boom := perrors.New("stage two failed")
	calls := 0

	stage := func(_ context.Context, in interface{}) (interface{}, error) {
		calls++
		return in, nil
	}
	failing := func(_ context.Context, _ interface{}) (interface{}, error) {
		return nil, boom
	}

	method := Compose(stage, failing, stage, stage)

	_, err := method(context.Background(), "x")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "stages after the failure must not run")
}

func TestComposeEmptyIsIdentity(t *testing.T) {
	method := Compose()

	out, err := method(context.Background(), "unchanged")
	require.NoError(t, err)
	assert.Equal(t, "unchanged", out)
}

func TestComposeSkipsNilStages(t *testing.T) {
	upper := func(_ context.Context, in interface{}) (interface{}, error) {
		return in.(string) + "!", nil
	}

	method := Compose(nil, upper, nil)

	out, err := method(context.Background(), "hey")
	require.NoError(t, err)
	assert.Equal(t, "hey!", out)
}
