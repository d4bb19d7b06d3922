package model

import (
	"time"
)

// Share links a file to a server it is distributed to.
type Share struct {
	ID           string    `db:"id" json:"id"`
	FileID       string    `db:"file" json:"fileId"`
	ServerID     string    `db:"server" json:"serverId"`
	AuthorizerID string    `db:"authorizer" json:"authorizerId"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
