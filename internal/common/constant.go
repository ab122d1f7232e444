// Package common contains shared constants and sentinel errors used across
// the coordinator, page and panel components.
package common

// Storage keys. These names are persisted and must not be renamed without a
// migration.
const (
	KeyUserID         = "userId"
	KeyIsActive       = "isActive"
	KeyKeywordsString = "keywordsString"
	KeyKeywordsArray  = "keywordsArray"
)

// Message envelope values shared by the RPC and event channels.
const (
	OptRPC             = "rpc"
	OptEvent           = "event"
	EventStorageChange = "storageChange"
)

// PageIDHeaderName is the gRPC metadata key carrying the caller's page id.
const PageIDHeaderName = "page_id"
