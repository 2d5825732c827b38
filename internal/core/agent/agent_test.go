package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusk-sh/tusk/internal/core/config"
)

func TestGeneratePlanDirectCommandSkipsModel(t *testing.T) {
	// No API key configured; a direct command must still produce a plan.
	a := New(config.AgentConfig{Enabled: true})

	p, err := a.GeneratePlan(context.Background(), "ls -la", nil)
	require.NoError(t, err)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, "ls -la", p.Actions[0].Content)
}

func TestGeneratePlanEmptyRequest(t *testing.T) {
	a := New(config.AgentConfig{Enabled: true, APIKey: "k"})

	_, err := a.GeneratePlan(context.Background(), "   ", nil)
	assert.Error(t, err)
}

func TestGeneratePlanDisabledFallsBack(t *testing.T) {
	a := New(config.AgentConfig{Enabled: true})

	p, err := a.GeneratePlan(context.Background(), "summarize my notes directory", nil)
	require.NoError(t, err)
	require.Len(t, p.Actions, 1)
	assert.Contains(t, p.Explanation, "disabled")
	assert.False(t, p.RequiresConfirmation)
	assert.Contains(t, p.Actions[0].Content, "echo")
}
