package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/eventd/internal/config"
	"github.com/ManuGH/eventd/internal/domain/event/model"
)

func TestNewFromExample(t *testing.T) {
	for _, def := range config.Example().Events {
		t.Run(def.Name, func(t *testing.T) {
			hooks, err := New(def)
			require.NoError(t, err)
			assert.Equal(t, def.Variant, hooks.Kind())
		})
	}
}

func TestNewReturnsFreshValues(t *testing.T) {
	def := config.Example().Events[0]
	a, err := New(def)
	require.NoError(t, err)
	b, err := New(def)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestNewErrors(t *testing.T) {
	def := config.Example().Events[1]
	def.Arena = nil
	_, err := New(def)
	require.ErrorIs(t, err, ErrMissingBlock)

	_, err = New(config.EventDefinition{Variant: model.VariantKind("tag")})
	require.ErrorIs(t, err, ErrUnknownVariant)
}
