package lexer

import (
	"github.com/aegis-lang/aegis/internal/diagnostics"
	"github.com/aegis-lang/aegis/internal/pipeline"
	"github.com/aegis-lang/aegis/internal/token"
)

// LexerProcessor drains a Lexer into ctx.TokenStream, the buffered
// form the parser walks with Peek/nextToken.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.Source)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			ctx.Errors = append(ctx.Errors, diagnostics.NewErrorAt(
				diagnostics.ErrLexInvalidChar, tok.Line, "%s", err.Error(),
			))
			break
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	ctx.TokenStream = toks
	return ctx
}
