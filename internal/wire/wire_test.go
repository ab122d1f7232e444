package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/hlsync/internal/common"
)

func TestRequest_EncodeDecode(t *testing.T) {
	s, err := EncodeRequest("setKeywordsRaw", []any{"Go Rust"})
	require.NoError(t, err)

	assert.Equal(t, "rpc", s.GetFields()["opt"].GetStringValue())

	fn, args, err := DecodeRequest(s)
	require.NoError(t, err)
	assert.Equal(t, "setKeywordsRaw", fn)
	assert.Equal(t, []any{"Go Rust"}, args)
}

func TestDecodeRequest_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
	}{
		{"wrong opt", map[string]any{"opt": "event", "function": "getEnabled"}},
		{"missing function", map[string]any{"opt": "rpc"}},
		{"arguments not a list", map[string]any{"opt": "rpc", "function": "setEnabled", "arguments": "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := structpb.NewStruct(tt.in)
			require.NoError(t, err)
			_, _, err = DecodeRequest(s)
			assert.ErrorIs(t, err, common.ErrorInvalidArguments)
		})
	}
}

func TestDecodeRequest_MissingArgumentsIsEmpty(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{"opt": "rpc", "function": "getEnabled"})
	require.NoError(t, err)

	_, args, err := DecodeRequest(s)
	require.NoError(t, err)
	assert.Equal(t, []any{}, args)
}

func TestEncodeValue_StringSlice(t *testing.T) {
	v, err := EncodeValue([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, Strings(v.AsInterface()))
}

func TestErrorValue_RoundTrip(t *testing.T) {
	msg, ok := AsError(ErrorValue("store down"))
	require.True(t, ok)
	assert.Equal(t, "store down", msg)

	plain, err := EncodeValue("error")
	require.NoError(t, err)
	_, ok = AsError(plain)
	assert.False(t, ok)

	other, err := EncodeValue(map[string]any{"error": "x", "extra": 1})
	require.NoError(t, err)
	_, ok = AsError(other)
	assert.False(t, ok)
}

func TestEvent_EncodeDecode(t *testing.T) {
	s, err := EncodeEvent(common.KeyKeywordsArray, []string{"go"})
	require.NoError(t, err)

	m := s.AsMap()
	assert.Equal(t, "event", m["opt"])
	assert.Equal(t, "storageChange", m["event"])

	key, value, err := DecodeEvent(s)
	require.NoError(t, err)
	assert.Equal(t, common.KeyKeywordsArray, key)
	assert.Equal(t, []string{"go"}, Strings(value))
}

func TestDecodeEvent_RejectsRPCMessage(t *testing.T) {
	s, err := EncodeRequest("getEnabled", nil)
	require.NoError(t, err)
	_, _, err = DecodeEvent(s)
	assert.Error(t, err)
}
