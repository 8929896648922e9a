package script

import (
	"context"
)

// ScriptEngine provides the main interface for script execution
type ScriptEngine interface {
	// Execute runs a script with the given context and returns results
	Execute(ctx context.Context, req ExecutionRequest) (*ScriptOutput, error)

	// Shutdown gracefully stops the engine and cleans up resources
	Shutdown(ctx context.Context) error
}

// LanguageEngine executes scripts in a specific language
type LanguageEngine interface {
	// Compile prepares a script for execution
	Compile(script *Script) (*CompiledScript, error)

	// Execute runs a compiled script with context
	Execute(ctx context.Context, compiled *CompiledScript, input *ScriptInput) (*ScriptOutput, error)

	// SetSecurityLimits configures resource and security constraints
	SetSecurityLimits(limits SecurityLimits) error
}
