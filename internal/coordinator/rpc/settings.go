package rpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hlsync/internal/common"
)

// Settings is the operation set the router exposes.
type Settings interface {
	GetUserID(ctx context.Context) (string, error)
	GetEnabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
	GetKeywordsRaw(ctx context.Context) (string, error)
	GetKeywordsList(ctx context.Context) ([]string, error)
	SetKeywordsRaw(ctx context.Context, raw string) error
}

// Exposed function names.
const (
	FnGetUserID       = "getUserId"
	FnGetEnabled      = "getEnabled"
	FnSetEnabled      = "setEnabled"
	FnGetKeywordsRaw  = "getKeywordsRaw"
	FnGetKeywordsList = "getKeywordsList"
	FnSetKeywordsRaw  = "setKeywordsRaw"
)

// legacyNames maps the names older extension builds send to current ones.
var legacyNames = map[string]string{
	"getActiveStatus":   FnGetEnabled,
	"setActiveStatus":   FnSetEnabled,
	"getKeywordsString": FnGetKeywordsRaw,
	"setKeywordsString": FnSetKeywordsRaw,
	"getKeywords":       FnGetKeywordsList,
}

// RegisterSettings exposes every settings operation, under both the current
// and the legacy names.
func RegisterSettings(r *Router, s Settings) {
	handlers := map[string]Handler{
		FnGetUserID: func(ctx context.Context, _ []any) (any, error) {
			return s.GetUserID(ctx)
		},
		FnGetEnabled: func(ctx context.Context, _ []any) (any, error) {
			return s.GetEnabled(ctx)
		},
		FnSetEnabled: func(ctx context.Context, args []any) (any, error) {
			enabled, err := boolArg(args, 0)
			if err != nil {
				return nil, err
			}
			return nil, s.SetEnabled(ctx, enabled)
		},
		FnGetKeywordsRaw: func(ctx context.Context, _ []any) (any, error) {
			return s.GetKeywordsRaw(ctx)
		},
		FnGetKeywordsList: func(ctx context.Context, _ []any) (any, error) {
			return s.GetKeywordsList(ctx)
		},
		FnSetKeywordsRaw: func(ctx context.Context, args []any) (any, error) {
			raw, err := stringArg(args, 0)
			if err != nil {
				return nil, err
			}
			return nil, s.SetKeywordsRaw(ctx, raw)
		},
	}

	for name, h := range handlers {
		r.Register(name, h)
	}
	for legacy, current := range legacyNames {
		r.Register(legacy, handlers[current])
	}
}

func boolArg(args []any, i int) (bool, error) {
	if i >= len(args) {
		return false, fmt.Errorf("%w: missing argument %d", common.ErrorInvalidArguments, i)
	}
	v, ok := args[i].(bool)
	if !ok {
		return false, fmt.Errorf("%w: argument %d must be a boolean, got %T", common.ErrorInvalidArguments, i, args[i])
	}
	return v, nil
}

// stringArg treats a missing or null argument as the empty string, the way
// the panel clears its keyword box.
func stringArg(args []any, i int) (string, error) {
	if i >= len(args) || args[i] == nil {
		return "", nil
	}
	v, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %d must be a string, got %T", common.ErrorInvalidArguments, i, args[i])
	}
	return v, nil
}
