// Package client is the caller side of the coordinator.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) used by page
//     agents and the settings panel: a generic Call plus typed wrappers for
//     every settings operation, Activate and Watch.
//  2. A gRPC implementation (see GRPCClient) that manages a connection,
//     stamps the caller's page id on every request via interceptors and maps
//     gRPC status codes to sentinel errors.
//
// # Error Handling
//
// Transport failures surface as ErrUnavailable. A call that reached the
// coordinator and failed there returns a *RemoteError carrying the reply's
// error text.
//
// A client built without a page id (the panel) may Call but not Activate or
// Watch: those return ErrNoPageID.
package client
