package models

import "time"

// AuditLog records sensitive user operations for security and compliance.
type AuditLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActorID      string    `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action       string    `gorm:"not null" json:"action"`
	ResourceType string    `gorm:"not null" json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	IPAddress    string    `json:"ip_address"`
	Changes      string    `json:"changes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
