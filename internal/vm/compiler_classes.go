package vm

import "github.com/aegis-lang/aegis/internal/ast"

// compileClassStatement compiles a class declaration into a constant
// Class value bound under its own name. Parent linking is resolved
// lazily at runtime (see resolveParent in vm_calls.go), by name, so
// that classes may reference a parent declared later in the file; the
// parent must be a global of the same VM.
func (c *Compiler) compileClassStatement(cls *ast.ClassStatement) {
	line := cls.Line()
	c.classStack = append(c.classStack, &compilingClass{name: cls.Name, parentName: cls.Parent})

	methods := make(map[string]*Function, len(cls.Methods))
	for _, m := range cls.Methods {
		fn := c.compileFunctionBody(m.Function.Name, m.Function.Params, m.Function.ReturnType, m.Function.Body, m.Function.Line())
		methods[m.Function.Name] = fn
	}

	var propDefaults []PropDefault
	for _, fd := range cls.Fields {
		if fd.Default == nil {
			continue
		}
		body := []ast.Statement{ast.NewReturnStatement(fd.Default.Line(), fd.Default)}
		fn := c.compileFunctionBody(fd.Name, []ast.Param{{Name: "this"}}, "", body, fd.Default.Line())
		propDefaults = append(propDefaults, PropDefault{Name: fd.Name, Chunk: fn.Chunk})
	}

	c.classStack = c.classStack[:len(c.classStack)-1]

	class := &Class{
		Name:              cls.Name,
		ParentName:        cls.Parent,
		ConstructorParams: cls.Params, // nil means "inherit the parent's"
		PropDefaults:      propDefaults,
		Methods:           methods,
	}
	idx, err := c.fn.chunk.AddConstant(Value{Kind: KindClass, Obj: class})
	if err != nil {
		c.errorf(line, "%v", err)
		return
	}
	c.emit(OpClass, line)
	c.emitByte(idx, line)
	c.bindDeclaration(cls.Name, line)
}
