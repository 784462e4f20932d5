package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/pancakes-web/pancakes/errors"
)

func TestRegistryRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.Register("resources/post/post.resource", "the module")

	got, err := reg.LoadModule(context.Background(), "resources/post/post.resource")
	require.NoError(t, err)
	assert.Equal(t, "the module", got)
}

func TestRegistryMissingModule(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.LoadModule(context.Background(), "resources/nope/nope.resource")
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrModuleNotFound)
	assert.Contains(t, err.Error(), "resources/nope/nope.resource")
}

func TestRegistryReplaces(t *testing.T) {
	reg := NewRegistry()
	reg.Register("filters/service/post", 1)
	reg.Register("filters/service/post", 2)

	got, err := reg.LoadModule(context.Background(), "filters/service/post")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestRegistryPathsSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", nil)
	reg.Register("a", nil)

	assert.Equal(t, []string{"a", "b"}, reg.Paths())
}
