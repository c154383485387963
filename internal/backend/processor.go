package backend

import (
	"github.com/aegis-lang/aegis/internal/diagnostics"
	"github.com/aegis-lang/aegis/internal/pipeline"
)

// ExecutionProcessor implements pipeline.Processor, running a Backend
// as the pipeline's final stage and turning a runtime failure into a
// diagnostics.Error the same way parse/lex failures are reported.
type ExecutionProcessor struct {
	Backend Backend
}

func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	if _, err := p.Backend.Run(ctx); err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewErrorAt(
			diagnostics.ErrRuntimeGeneric, 0, "%s", err.Error(),
		))
	}
	return ctx
}
