package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile represents an end user of the MomPick app.
type Profile struct {
	ID    string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	PasswordHash *string `gorm:"type:text" json:"-"`

	FullName        string `gorm:"not null" json:"full_name"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url"`

	IsAdmin bool `gorm:"default:false" json:"is_admin"`

	LastActiveAt *time.Time `json:"last_active_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName returns the name shown next to the user's content.
// Nickname wins over the registered full name.
func (p *Profile) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.FullName
}

// BlockedUser represents one user blocking another.
// Blocking is a personal view filter: the blocked user's reviews disappear
// from the blocker's listings but still count toward aggregate stats.
type BlockedUser struct {
	ID        string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	BlockerID string  `gorm:"not null;index" json:"blocker_id"`
	Blocker   Profile `gorm:"foreignKey:BlockerID" json:"-"`
	BlockedID string  `gorm:"not null;index" json:"blocked_id"`
	Blocked   Profile `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (BlockedUser) TableName() string {
	return "blocked_users"
}

// FavoriteTargetType enumerates the facility kinds a user can bookmark.
type FavoriteTargetType string

const (
	FavoriteChildcare    FavoriteTargetType = "childcare"
	FavoriteKindergarten FavoriteTargetType = "kindergarten"
	FavoritePlayground   FavoriteTargetType = "playground"
	FavoriteHospital     FavoriteTargetType = "hospital"
)

// Valid reports whether t is a known favorite target type.
func (t FavoriteTargetType) Valid() bool {
	switch t {
	case FavoriteChildcare, FavoriteKindergarten, FavoritePlayground, FavoriteHospital:
		return true
	}
	return false
}

// Favorite bookmarks a facility for a user. Region metadata is carried so the
// client can re-run the regional query the facility came from.
type Favorite struct {
	ID         string             `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProfileID  string             `gorm:"not null;index" json:"profile_id"`
	Profile    Profile            `gorm:"foreignKey:ProfileID" json:"-"`
	TargetType FavoriteTargetType `gorm:"type:varchar(20);not null" json:"target_type"`
	TargetID   string             `gorm:"not null" json:"target_id"`
	TargetName string             `json:"target_name"`

	// Region metadata, populated depending on target type.
	Arcode   string `json:"arcode,omitempty"`
	SidoCode string `json:"sido_code,omitempty"`
	SggCode  string `json:"sgg_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
