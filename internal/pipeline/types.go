package pipeline

import (
	"github.com/aegis-lang/aegis/internal/ast"
	"github.com/aegis-lang/aegis/internal/diagnostics"
	"github.com/aegis-lang/aegis/internal/token"
)

// PipelineContext threads source text and state through the
// lex/parse/compile/execute stages. Every stage reads what it needs
// and appends to Errors rather than aborting, so later stages can
// still surface collected diagnostics together.
type PipelineContext struct {
	Source   string
	FilePath string

	TokenStream []token.Token
	AstRoot     *ast.Program
	Errors      []*diagnostics.Error

	// Loader is the module import resolver (internal/modules.Loader);
	// typed as interface{} here to avoid an import cycle.
	Loader interface{}

	IsTestMode bool
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{Source: source}
}

// Processor is one stage of a Pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}
