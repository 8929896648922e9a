package script

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Execute(t *testing.T) {
	engine := NewEngine()

	req := ExecutionRequest{
		ModuleName: "effect_test",
		ScriptName: "calculator",
		Content:    `result := a + b`,
		Input: &ScriptInput{
			Context: map[string]interface{}{
				"a": 10,
				"b": 20,
			},
		},
	}

	output, err := engine.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(30), output.Result)
	assert.True(t, output.Metrics.Success)
}

func TestEngine_Execute_CompilationError(t *testing.T) {
	engine := NewEngine()

	req := ExecutionRequest{
		ModuleName: "effect_test",
		ScriptName: "broken",
		Content:    `result := undefined_variable`,
	}

	_, err := engine.Execute(context.Background(), req)
	require.Error(t, err)

	var scriptErr *ScriptError
	assert.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, ErrorTypeCompilation, scriptErr.Type)
}

func TestEngine_Execute_SecurityLimitsOverride(t *testing.T) {
	engine := NewEngine()

	req := ExecutionRequest{
		ModuleName: "effect_test",
		ScriptName: "slow",
		Content: `
			for true {
				// infinite loop to trigger the overridden timeout
			}
		`,
		SecurityLimits: SecurityLimits{MaxExecutionTime: 1 * time.Millisecond},
	}

	_, err := engine.Execute(context.Background(), req)
	require.Error(t, err)

	var scriptErr *ScriptError
	assert.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, ErrorTypeTimeout, scriptErr.Type)
}

func TestEngine_ErrorReporting(t *testing.T) {
	engine := NewEngine()

	req := ExecutionRequest{
		ModuleName: "effect_test",
		ScriptName: "broken",
		Content:    `result := {`,
	}

	_, err := engine.Execute(context.Background(), req)
	require.Error(t, err)

	summary := engine.GetErrorSummary()
	assert.NotNil(t, summary)
	assert.GreaterOrEqual(t, summary.TotalErrors, 1)

	engine.ClearErrorHistory()
	assert.Equal(t, 0, engine.GetErrorSummary().TotalErrors)
}

func TestEngine_Shutdown(t *testing.T) {
	engine := NewEngine()

	err := engine.Shutdown(context.Background())
	assert.NoError(t, err)
}
