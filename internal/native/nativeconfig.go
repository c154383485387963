package native

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aegis-lang/aegis/internal/vm"
)

// EnableList is the declarative form of "which native modules this
// project's VM should register," read from a project's manifest-
// adjacent config file (e.g. `natives.yaml`) rather than hardcoded at
// the call site — mirroring the teacher's virtual-package init list
// (modules/virtual_init.go enables lib/* modules by name, not by
// linking every one unconditionally).
type EnableList struct {
	Modules []string `yaml:"modules"`
}

// LoadEnableList reads an EnableList from path.
func LoadEnableList(path string) (*EnableList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading native enable list: %w", err)
	}
	var list EnableList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing native enable list: %w", err)
	}
	return &list, nil
}

// Build resolves an EnableList into an actual Set, looking each
// requested module name up against the groups this package ships.
// Unknown names (including the documented-but-unimplemented modules
// in UnregisteredModules) are reported rather than silently skipped.
func Build(list *EnableList) (Set, []string, error) {
	available := map[string]Set{
		"math":    MathSet(),
		"string":  StringsSet(),
		"time":    TimeSet(),
		"io":      IOSet(),
		"rpc":     RPCSet(),
	}

	var unknown []string
	result := Set{}
	for _, name := range list.Modules {
		s, ok := available[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		for k, v := range s {
			result[k] = v
		}
	}
	return result, unknown, nil
}

// NewRegistry builds a vm.NativeRegistry from a Set, ready to hand to
// vm.NewVM alongside the compiler's matching GlobalTable.
func NewRegistry(s Set) *vm.NativeRegistry {
	return vm.NewNativeRegistry(map[string]vm.NativeFunc(s))
}
