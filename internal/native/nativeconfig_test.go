package native

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aegis-lang/aegis/internal/vm"
)

func TestLoadEnableList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "natives.yaml")
	if err := os.WriteFile(path, []byte("modules:\n  - math\n  - time\n"), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}

	list, err := LoadEnableList(path)
	if err != nil {
		t.Fatalf("LoadEnableList: %v", err)
	}
	if len(list.Modules) != 2 || list.Modules[0] != "math" || list.Modules[1] != "time" {
		t.Errorf("got %v, want [math time]", list.Modules)
	}
}

func TestLoadEnableListMissingFile(t *testing.T) {
	if _, err := LoadEnableList("/no/such/file.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRPCCallStatus(t *testing.T) {
	s := RPCSet()
	v := call(t, s, "rpc.callStatus", vm.Str("deadline exceeded"))
	if v.Kind != vm.KindString || v.S == "" {
		t.Errorf("rpc.callStatus returned %v", v)
	}
}
