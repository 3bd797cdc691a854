package model

import "time"

const DefaultMime = "application/octet-stream"

// Attachment is an uploaded file owned by a conversation. Path points at the
// server-local copy under a generated unique name.
type Attachment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	Filename       string    `gorm:"size:300;not null" json:"filename"`
	Mime           string    `gorm:"size:120" json:"mime"`
	Path           string    `gorm:"size:500;not null" json:"-"`
	Size           int64     `gorm:"not null" json:"size"`
	CreatedAt      time.Time `json:"created_at"`
}
