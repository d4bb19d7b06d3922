package model

import (
	"time"
)

const (
	ServerStatusOffline     = "offline"
	ServerStatusOnline      = "online"
	ServerStatusMaintenance = "maintenance"
)

type Server struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Host        string    `db:"host" json:"host"`
	Port        int       `db:"port" json:"port"`
	Status      string    `db:"status" json:"status"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
