package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hlsync/internal/coordinator/rpc"
	"github.com/dmitrijs2005/hlsync/internal/wire"
)

func (s *GRPCClient) GetUserID(ctx context.Context) (string, error) {
	v, err := s.Call(ctx, rpc.FnGetUserID)
	if err != nil {
		return "", err
	}
	id, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected reply %T", rpc.FnGetUserID, v)
	}
	return id, nil
}

func (s *GRPCClient) GetEnabled(ctx context.Context) (bool, error) {
	v, err := s.Call(ctx, rpc.FnGetEnabled)
	if err != nil {
		return false, err
	}
	enabled, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected reply %T", rpc.FnGetEnabled, v)
	}
	return enabled, nil
}

func (s *GRPCClient) SetEnabled(ctx context.Context, enabled bool) error {
	_, err := s.Call(ctx, rpc.FnSetEnabled, enabled)
	return err
}

func (s *GRPCClient) GetKeywordsRaw(ctx context.Context) (string, error) {
	v, err := s.Call(ctx, rpc.FnGetKeywordsRaw)
	if err != nil {
		return "", err
	}
	raw, _ := v.(string)
	return raw, nil
}

func (s *GRPCClient) GetKeywordsList(ctx context.Context) ([]string, error) {
	v, err := s.Call(ctx, rpc.FnGetKeywordsList)
	if err != nil {
		return nil, err
	}
	return wire.Strings(v), nil
}

func (s *GRPCClient) SetKeywordsRaw(ctx context.Context, raw string) error {
	_, err := s.Call(ctx, rpc.FnSetKeywordsRaw, raw)
	return err
}
