// internal/models/event.go
package models

// LedgerEvent is the persisted form of an emitted fact. Hash chains each
// event to the previous one so the log is tamper evident.
type LedgerEvent struct {
	BaseModel
	Kind         EventKind   `json:"kind" gorm:"type:varchar(40);not null;index"`
	SubjectType  string      `json:"subject_type" gorm:"size:20;not null;index"`
	SubjectID    uint64      `json:"subject_id" gorm:"not null;index"`
	Actor        PrincipalID `json:"actor" gorm:"size:128"`
	Payload      JSONB       `json:"payload" gorm:"type:jsonb"`
	Hash         string      `json:"hash" gorm:"size:64;uniqueIndex"`
	PreviousHash string      `json:"previous_hash" gorm:"size:64"`
}
