// internal/models/audit.go
package models

type AuditLog struct {
	BaseModel
	Principal    PrincipalID `json:"principal" gorm:"size:128;index"`
	Action       string      `json:"action" gorm:"size:100;not null;index"`
	ResourceType string      `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uint64     `json:"resource_id" gorm:"index"`
	Status       int         `json:"status"`
	NewValues    JSONB       `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string      `json:"ip_address" gorm:"size:45"`
	UserAgent    string      `json:"user_agent" gorm:"type:text"`
}
