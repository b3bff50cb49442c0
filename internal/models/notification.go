package models

import (
	"time"
)

// NotificationType enumerates in-app notification kinds.
type NotificationType string

const (
	NotificationReviewLike NotificationType = "review_like"
)

// NotificationPayload is the opaque display payload stored alongside a
// notification row. The client renders from this without extra lookups.
type NotificationPayload struct {
	FacilityName string `json:"facility_name,omitempty"`
	FromName     string `json:"from_name,omitempty"`
	FromImageURL string `json:"from_image_url,omitempty"`
}

// Notification is an in-app notification row, created as a side effect of a
// helpful mark and best-effort deleted when the mark is removed. Removal
// matches on (review, from, to) rather than a stored id.
type Notification struct {
	ID   string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Type NotificationType `gorm:"type:varchar(32);not null" json:"type"`

	ReviewID *string `gorm:"type:uuid;index" json:"review_id,omitempty"`

	FromProfileID string  `gorm:"not null;index" json:"from_profile_id"`
	From          Profile `gorm:"foreignKey:FromProfileID" json:"-"`
	ToProfileID   string  `gorm:"not null;index" json:"to_profile_id"`
	To            Profile `gorm:"foreignKey:ToProfileID" json:"-"`

	Payload *NotificationPayload `gorm:"type:jsonb;serializer:json" json:"payload,omitempty"`

	IsRead bool `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

// NotificationSetting holds a user's opt-outs. Absence of a row means
// everything is enabled.
type NotificationSetting struct {
	ID        string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProfileID string  `gorm:"not null;uniqueIndex" json:"profile_id"`
	Profile   Profile `gorm:"foreignKey:ProfileID" json:"-"`

	ReviewLikeEnabled bool `gorm:"default:true" json:"review_like_enabled"`
	PushEnabled       bool `gorm:"default:true" json:"push_enabled"`

	UpdatedAt time.Time `json:"updated_at"`
}

// FCMToken maps a (profile, device) pair to its current push token. The raw
// token value is unique system-wide: a token showing up under a new owner
// evicts the old row.
type FCMToken struct {
	ID        string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProfileID string  `gorm:"not null;index" json:"profile_id"`
	Profile   Profile `gorm:"foreignKey:ProfileID" json:"-"`

	Token    string  `gorm:"type:text;not null;uniqueIndex" json:"token"`
	Platform string  `gorm:"type:varchar(16)" json:"platform"` // "ios" | "android"
	DeviceID *string `gorm:"index" json:"device_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FCMToken) TableName() string {
	return "fcm_tokens"
}
