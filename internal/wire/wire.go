// Package wire defines the coordinator's gRPC surface and the message shapes
// carried over it. Messages are protobuf well-known types, so no generated
// code is needed:
//
//	Call     Struct{opt:"rpc", function, arguments}           -> Value (result or {error})
//	Activate Empty (page id in metadata)                      -> Empty
//	Watch    Empty (page id in metadata)                      -> stream Struct{opt:"event", event:"storageChange", arguments:{key, value}}
package wire

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/hlsync/internal/common"
)

const ServiceName = "hlsync.v1.Coordinator"

const (
	MethodCall     = "/" + ServiceName + "/Call"
	MethodActivate = "/" + ServiceName + "/Activate"
	MethodWatch    = "/" + ServiceName + "/Watch"
)

// WatchStreamDesc describes the server-streaming Watch method.
var WatchStreamDesc = grpc.StreamDesc{
	StreamName:    "Watch",
	ServerStreams: true,
}

// Normalize converts Go values into the shapes structpb accepts, recursing
// into slices and maps. []string becomes []any.
func Normalize(v any) any {
	switch val := v.(type) {
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	default:
		return v
	}
}

func EncodeValue(v any) (*structpb.Value, error) {
	return structpb.NewValue(Normalize(v))
}

// ErrorValue builds the {error: message} reply.
func ErrorValue(msg string) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"error": structpb.NewStringValue(msg),
	}})
}

// AsError reports whether v is an {error: message} reply.
func AsError(v *structpb.Value) (string, bool) {
	s := v.GetStructValue()
	if s == nil || len(s.GetFields()) != 1 {
		return "", false
	}
	f, ok := s.GetFields()["error"]
	if !ok {
		return "", false
	}
	if _, isString := f.GetKind().(*structpb.Value_StringValue); !isString {
		return "", false
	}
	return f.GetStringValue(), true
}

func EncodeRequest(function string, args []any) (*structpb.Struct, error) {
	if args == nil {
		args = []any{}
	}
	return structpb.NewStruct(map[string]any{
		"opt":       common.OptRPC,
		"function":  function,
		"arguments": Normalize(args),
	})
}

func DecodeRequest(s *structpb.Struct) (function string, args []any, err error) {
	m := s.AsMap()
	if opt, _ := m["opt"].(string); opt != common.OptRPC {
		return "", nil, fmt.Errorf("%w: opt must be %q", common.ErrorInvalidArguments, common.OptRPC)
	}
	function, ok := m["function"].(string)
	if !ok || function == "" {
		return "", nil, fmt.Errorf("%w: function name is required", common.ErrorInvalidArguments)
	}
	switch a := m["arguments"].(type) {
	case nil:
		args = []any{}
	case []any:
		args = a
	default:
		return "", nil, fmt.Errorf("%w: arguments must be a list", common.ErrorInvalidArguments)
	}
	return function, args, nil
}

func EncodeEvent(key string, value any) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"opt":   common.OptEvent,
		"event": common.EventStorageChange,
		"arguments": map[string]any{
			"key":   key,
			"value": Normalize(value),
		},
	})
}

func DecodeEvent(s *structpb.Struct) (key string, value any, err error) {
	m := s.AsMap()
	if opt, _ := m["opt"].(string); opt != common.OptEvent {
		return "", nil, fmt.Errorf("not an event message")
	}
	if ev, _ := m["event"].(string); ev != common.EventStorageChange {
		return "", nil, fmt.Errorf("unsupported event %q", ev)
	}
	args, ok := m["arguments"].(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("event without arguments")
	}
	key, ok = args["key"].(string)
	if !ok {
		return "", nil, fmt.Errorf("event without key")
	}
	return key, args["value"], nil
}

// Strings converts a decoded list value back into []string, skipping
// non-string items.
func Strings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
