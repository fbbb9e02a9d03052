package relay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAccumulator_EmptyFails(t *testing.T) {
	var acc Accumulator

	_, err := acc.Finalize()

	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestAccumulator_WhitespaceOnlyFragmentsAreNotContent(t *testing.T) {
	var acc Accumulator
	acc.Add("   ")
	acc.Add("\n\t")

	assert.Zero(t, acc.Len())
	_, err := acc.Finalize()
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestAccumulator_TrimsResult(t *testing.T) {
	var acc Accumulator
	acc.Add("  x  ")

	result, err := acc.Finalize()

	require.NoError(t, err)
	assert.Equal(t, "x", result)
}

func TestAccumulator_JoinsWithoutSeparator(t *testing.T) {
	var acc Accumulator
	acc.Add("Hello ")
	acc.Add("world")

	result, err := acc.Finalize()

	require.NoError(t, err)
	assert.Equal(t, "Hello world", result)
}

func TestAccumulatorOrderProperty(t *testing.T) {
	fragGen := rapid.StringMatching(`[A-Za-z0-9][A-Za-z0-9 ]{0,15}`)

	rapid.Check(t, func(t *rapid.T) {
		fragments := rapid.SliceOfN(fragGen, 1, 10).Draw(t, "fragments")

		var acc Accumulator
		for _, f := range fragments {
			acc.Add(f)
		}

		result, err := acc.Finalize()
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		want := strings.TrimSpace(strings.Join(fragments, ""))
		if result != want {
			t.Fatalf("result = %q, want %q", result, want)
		}
	})
}
