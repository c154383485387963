package native

import (
	"fmt"

	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/aegis-lang/aegis/internal/vm"
)

// RPCSet wires `rpc.describe` — the deliberately boundary-thin slice
// of the protobuf/grpc stack: parse a .proto file's service
// definitions and hand back their method names as an aegis List of
// Strings. No service is hosted and no real call is dispatched here;
// full RPC server/client plumbing stays out of the native registry's
// scope, matching spec.md's exclusion of native HTTP/socket
// internals. `rpc.callStatus` is the one call-adjacent helper: given
// an error message as a String, it formats it as a grpc status with
// code Unknown and returns the result as a String value; it does not
// raise an error.
func RPCSet() Set {
	return Set{
		"rpc.describe": describeProto,
		"rpc.callStatus": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 || args[0].Kind != vm.KindString {
				return vm.Value{}, arityErr("rpc.callStatus", 1, len(args))
			}
			st := status.New(codes.Unknown, args[0].S)
			return vm.Str(fmt.Sprintf("%s: %s", st.Code(), st.Message())), nil
		},
	}
}

func describeProto(args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Kind != vm.KindString {
		return vm.Value{}, arityErr("rpc.describe", 1, len(args))
	}
	parser := protoparse.Parser{ImportPaths: []string{"."}}
	descs, err := parser.ParseFiles(args[0].S)
	if err != nil {
		return vm.Value{}, fmt.Errorf("rpc.describe: %w", err)
	}

	var methods []vm.Value
	for _, fd := range descs {
		for _, svc := range fd.GetServices() {
			for _, m := range svc.GetMethods() {
				methods = append(methods, vm.Str(svc.GetFullyQualifiedName()+"."+m.GetName()))
			}
		}
	}
	return vm.NewList(methods), nil
}

// NewClientConn is a thin helper a host embedding aegis can use to
// open the connection that rpc.callStatus's errors would describe. It
// is not itself registered as a native — dialing a live RPC endpoint
// from inside a sandboxed script is exactly the native-registry
// surface spec.md keeps out of the core's scope.
func NewClientConn(target string) (*grpc.ClientConn, error) {
	return grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
}
