package models

// SyncStatus is the user-visible state of the remote sync engine.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "Idle"
	SyncSyncing SyncStatus = "Syncing"
	SyncSynced  SyncStatus = "Synced"
	SyncError   SyncStatus = "Error"
)
