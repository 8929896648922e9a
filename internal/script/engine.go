package script

import (
	"context"
	"log/slog"
)

// Engine implements ScriptEngine by compiling and running Tengo source
// handed to it directly, rather than loading scripts off disk. Effects own
// their script content; the engine only owns execution discipline.
type Engine struct {
	tengo          *TengoEngine
	securityLimits SecurityLimits
	errorReporter  *ErrorReporter
}

// NewEngine creates a new script engine with default security limits.
// Call SetSecurityLimits to apply the host's configured limits.
func NewEngine() *Engine {
	return &Engine{
		tengo:          NewTengoEngine(),
		securityLimits: GetDefaultSecurityLimits(),
		errorReporter:  NewErrorReporter(),
	}
}

// Execute compiles req.Content and runs it with req.Input.
func (e *Engine) Execute(ctx context.Context, req ExecutionRequest) (*ScriptOutput, error) {
	limits := e.securityLimits
	if req.SecurityLimits.MaxExecutionTime > 0 {
		limits = req.SecurityLimits
	}
	if err := e.tengo.SetSecurityLimits(limits); err != nil {
		scriptErr := NewScriptError(
			ErrorTypeExecution,
			req.ModuleName,
			req.ScriptName,
			"failed to set security limits",
			err,
		)
		e.errorReporter.ReportError(ctx, scriptErr, nil)
		return nil, scriptErr
	}

	src := &Script{
		ModuleName: req.ModuleName,
		Name:       req.ScriptName,
		Language:   LanguageTengo,
		Content:    req.Content,
		Source:     SourceEmbedded,
	}

	compiled, err := e.tengo.Compile(src)
	if err != nil {
		if scriptErr, ok := err.(*ScriptError); ok {
			e.errorReporter.ReportError(ctx, scriptErr, nil)
		}
		return nil, err
	}

	output, err := e.tengo.Execute(ctx, compiled, req.Input)
	if err != nil {
		if scriptErr, ok := err.(*ScriptError); ok {
			e.errorReporter.ReportError(ctx, scriptErr, nil)
		}
		return nil, err
	}

	LogExecution(slog.LevelDebug, "Script executed successfully", req.ModuleName, req.ScriptName,
		slog.Duration("execution_time", output.Metrics.ExecutionTime),
	)
	LogPerformance(req.ModuleName, req.ScriptName, output.Metrics)

	return output, nil
}

// Shutdown is a no-op; the engine holds no background resources of its own.
func (e *Engine) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down script engine")
	return nil
}

// SetSecurityLimits updates the default security limits for the engine.
func (e *Engine) SetSecurityLimits(limits SecurityLimits) {
	e.securityLimits = limits
	slog.Debug("Updated default security limits",
		"max_execution_time", limits.MaxExecutionTime,
		"max_memory_bytes", limits.MaxMemoryBytes,
	)
}

// GetErrorSummary returns aggregated error statistics.
func (e *Engine) GetErrorSummary() *ErrorSummary {
	return e.errorReporter.GetErrorSummary()
}

// ClearErrorHistory clears error tracking history.
func (e *Engine) ClearErrorHistory() {
	e.errorReporter.ClearErrorHistory()
}

// SetRecoveryPolicy updates the error recovery policy.
func (e *Engine) SetRecoveryPolicy(policy RecoveryPolicy) {
	e.errorReporter.SetRecoveryPolicy(policy)
}
