package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptOptions(t *testing.T) {
	assert.NoError(t, PromptOptions{}.Validate())
	assert.NoError(t, DefaultPromptOptions().Validate())
	assert.Error(t, PromptOptions{Target: "poetry"}.Validate())
	assert.Error(t, PromptOptions{Strictness: "extreme"}.Validate())
	assert.Error(t, PromptOptions{Detail: "verbose"}.Validate())

	target, err := ParsePromptTarget("Architecture")
	require.NoError(t, err)
	assert.Equal(t, TargetArchitecture, target)

	o := PromptOptions{Detail: DetailBrief}.WithDefaults()
	assert.Equal(t, PromptOptions{Target: TargetCode, Strictness: StrictnessHigh, Detail: DetailBrief}, o)
}
