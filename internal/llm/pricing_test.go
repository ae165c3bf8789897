package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCost(t *testing.T) {
	c := LookupCost("claude-sonnet-4-20250514")
	require.NotNil(t, c)
	assert.InDelta(t, 3.0+15.0, c.Cost(1_000_000, 1_000_000), 1e-9)

	assert.Nil(t, LookupCost("no-such-model"))
}

func TestFriendlyNamesArePriced(t *testing.T) {
	for _, table := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		for alias, id := range table {
			assert.NotNil(t, LookupCost(id), "alias %s", alias)
		}
	}
}
