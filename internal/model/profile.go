package model

const (
	DefaultTimezone = "Europe/Athens"
	DefaultTone     = "professional"
)

// Profile holds the single user's personalization settings. At most one row
// exists; it is created lazily with defaults on first access.
type Profile struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:120" json:"name"`
	Timezone string `gorm:"size:60" json:"timezone"`
	Tone     string `gorm:"size:60" json:"tone"`
	Notes    string `gorm:"type:text" json:"notes"`
}
