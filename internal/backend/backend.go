// Package backend wires the lexer/parser/compiler/VM stages together
// behind one interface, the way the teacher's backend package lets a
// driver swap execution strategies without caring about the
// plumbing underneath. Aegis only ever had one execution strategy (the
// bytecode VM), so there is exactly one implementation, but the seam
// stays in place: cmd/aegis runs scripts through it. internal/modules
// does not use it; it compiles and runs imported files on internal/vm
// directly.
package backend

import (
	"github.com/aegis-lang/aegis/internal/pipeline"
	"github.com/aegis-lang/aegis/internal/vm"
)

// Backend executes a parsed program and returns its result.
type Backend interface {
	Run(ctx *pipeline.PipelineContext) (vm.Value, error)
	Name() string
}
