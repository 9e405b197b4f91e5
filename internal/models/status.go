package models

import "time"

// SyncStatus is what the client reports about its last reconciliation with
// the remote store.
type SyncStatus struct {
	Syncing    bool
	LastSynced *time.Time
	Error      string
}
