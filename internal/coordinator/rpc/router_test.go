package rpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/hlsync/internal/common"
	"github.com/dmitrijs2005/hlsync/internal/logging"
)

// ---- fakes ----

type fakeSettings struct {
	userID   string
	enabled  bool
	raw      string
	list     []string
	err      error
	setCalls []any
}

func (f *fakeSettings) GetUserID(context.Context) (string, error) { return f.userID, f.err }
func (f *fakeSettings) GetEnabled(context.Context) (bool, error)  { return f.enabled, f.err }
func (f *fakeSettings) SetEnabled(_ context.Context, v bool) error {
	f.setCalls = append(f.setCalls, v)
	return f.err
}
func (f *fakeSettings) GetKeywordsRaw(context.Context) (string, error)    { return f.raw, f.err }
func (f *fakeSettings) GetKeywordsList(context.Context) ([]string, error) { return f.list, f.err }
func (f *fakeSettings) SetKeywordsRaw(_ context.Context, v string) error {
	f.setCalls = append(f.setCalls, v)
	return f.err
}

func newRouter(s Settings) *Router {
	r := NewRouter(logging.Nop{})
	RegisterSettings(r, s)
	return r
}

// await reads the single reply and checks the channel closes afterwards.
func await(t *testing.T, ch <-chan Response) Response {
	t.Helper()
	select {
	case resp, ok := <-ch:
		require.True(t, ok, "reply channel closed without a response")
		_, more := <-ch
		require.False(t, more, "reply channel delivered more than one response")
		return resp
	case <-time.After(2 * time.Second):
		t.Fatal("no rpc response")
		return Response{}
	}
}

// ---- tests ----

func TestDispatch_KnownFunctions(t *testing.T) {
	s := &fakeSettings{userID: "u-1", enabled: true, raw: "Go Rust", list: []string{"go", "rust"}}
	r := newRouter(s)
	ctx := context.Background()

	tests := []struct {
		fn   string
		want any
	}{
		{FnGetUserID, "u-1"},
		{FnGetEnabled, true},
		{FnGetKeywordsRaw, "Go Rust"},
		{FnGetKeywordsList, []string{"go", "rust"}},
		{"getActiveStatus", true},
		{"getKeywordsString", "Go Rust"},
		{"getKeywords", []string{"go", "rust"}},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			resp := await(t, r.Dispatch(ctx, Request{Function: tt.fn}))
			require.False(t, resp.Failed(), resp.Error)
			assert.Equal(t, tt.want, resp.Value)
		})
	}
}

func TestDispatch_SettersPassArguments(t *testing.T) {
	s := &fakeSettings{}
	r := newRouter(s)
	ctx := context.Background()

	resp := await(t, r.Dispatch(ctx, Request{Function: FnSetEnabled, Arguments: []any{false}}))
	require.False(t, resp.Failed())
	assert.Nil(t, resp.Value)

	resp = await(t, r.Dispatch(ctx, Request{Function: "setKeywordsString", Arguments: []any{"a b"}}))
	require.False(t, resp.Failed())

	resp = await(t, r.Dispatch(ctx, Request{Function: FnSetKeywordsRaw, Arguments: []any{nil}}))
	require.False(t, resp.Failed())

	assert.Equal(t, []any{false, "a b", ""}, s.setCalls)
}

func TestDispatch_UnknownFunctionGetsExplicitError(t *testing.T) {
	r := newRouter(&fakeSettings{})

	resp := await(t, r.Dispatch(context.Background(), Request{Function: "dropDatabase"}))
	require.True(t, resp.Failed())
	assert.Contains(t, resp.Error, common.ErrorUnknownFunction.Error())
	assert.Contains(t, resp.Error, "dropDatabase")
}

func TestDispatch_InvalidArguments(t *testing.T) {
	s := &fakeSettings{}
	r := newRouter(s)
	ctx := context.Background()

	for _, req := range []Request{
		{Function: FnSetEnabled},
		{Function: FnSetEnabled, Arguments: []any{"yes"}},
		{Function: FnSetKeywordsRaw, Arguments: []any{42.0}},
	} {
		resp := await(t, r.Dispatch(ctx, req))
		require.True(t, resp.Failed(), "%+v", req)
		assert.Contains(t, resp.Error, common.ErrorInvalidArguments.Error())
	}
	assert.Empty(t, s.setCalls)
}

func TestDispatch_ServiceErrorBecomesErrorResponse(t *testing.T) {
	r := newRouter(&fakeSettings{err: errors.New("store down")})

	resp := await(t, r.Dispatch(context.Background(), Request{Function: FnGetEnabled}))
	require.True(t, resp.Failed())
	assert.Equal(t, "store down", resp.Error)
	assert.Nil(t, resp.Value)
}

func TestDispatch_PanicBecomesErrorResponse(t *testing.T) {
	r := NewRouter(logging.Nop{})
	r.Register("boom", func(context.Context, []any) (any, error) { panic("bad input") })

	resp := await(t, r.Dispatch(context.Background(), Request{Function: "boom"}))
	require.True(t, resp.Failed())
	assert.Contains(t, resp.Error, "bad input")
}

func TestDispatch_ReplyIsDeferred(t *testing.T) {
	r := NewRouter(logging.Nop{})
	release := make(chan struct{})
	r.Register("slow", func(context.Context, []any) (any, error) {
		<-release
		return "done", nil
	})

	ch := r.Dispatch(context.Background(), Request{Function: "slow"})
	select {
	case <-ch:
		t.Fatal("reply arrived before the handler finished")
	default:
	}
	close(release)
	assert.Equal(t, "done", await(t, ch).Value)
}

func TestFunctions_ListsCurrentAndLegacyNames(t *testing.T) {
	r := newRouter(&fakeSettings{})
	assert.Equal(t, []string{
		"getActiveStatus", "getEnabled", "getKeywords", "getKeywordsList", "getKeywordsRaw",
		"getKeywordsString", "getUserId", "setActiveStatus", "setEnabled", "setKeywordsRaw", "setKeywordsString",
	}, r.Functions())
}
