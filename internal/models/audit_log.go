package models

// AuditLog is one user-initiated change to a budget, transaction or profile.
// Changes holds a JSON summary of the request that made it.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index:idx_audit_logs_user_created" json:"user_id"`
	Action       string `gorm:"size:64;not null" json:"action"`
	ResourceType string `gorm:"size:32;not null" json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `gorm:"size:64" json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
