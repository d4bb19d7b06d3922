package model

import (
	"time"
)

const (
	SyncStatusSynced  = "synced"
	SyncStatusPending = "pending"
)

// FileView is a listing entry as presented to clients.
type FileView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Type       string    `json:"type"`
	Size       *int64    `json:"size,omitempty"`
	UploaderID string    `json:"uploaderId"`
	CreatedAt  time.Time `json:"createdAt"`
	SharedWith []string  `json:"sharedWith"`
	SyncStatus string    `json:"syncStatus"`
}
