package models

import (
	"time"
)

// FacilityType discriminates the three reviewable facility kinds. The per-type
// review tables of the legacy schema were structurally identical, so they are
// consolidated into one table keyed by this column.
type FacilityType string

const (
	FacilityChildcare    FacilityType = "childcare"
	FacilityKindergarten FacilityType = "kindergarten"
	FacilityPlayground   FacilityType = "playground"
)

// Valid reports whether t is a known facility type.
func (t FacilityType) Valid() bool {
	switch t {
	case FacilityChildcare, FacilityKindergarten, FacilityPlayground:
		return true
	}
	return false
}

// Review is a user's rating and write-up for one facility.
//
// Moderation lifecycle: is_deleted is set only through an admin-approved
// delete request (or the legacy direct self-delete path); is_hidden is an
// independent admin toggle whose content is placeholdered on read.
type Review struct {
	ID           string       `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FacilityType FacilityType `gorm:"type:varchar(16);not null;index:idx_reviews_facility,priority:1" json:"facility_type"`
	FacilityCode string       `gorm:"not null;index:idx_reviews_facility,priority:2" json:"facility_code"`
	FacilityName string       `json:"facility_name"`

	ProfileID string  `gorm:"not null;index" json:"profile_id"`
	Author    Profile `gorm:"foreignKey:ProfileID" json:"-"`

	Rating  int    `gorm:"not null" json:"rating"` // 1-5
	Content string `gorm:"type:text;not null" json:"content"`

	// Denormalized convenience counter. The helpful toggle recounts the mark
	// table and writes the result back here; reads never trust it for the
	// toggle response.
	HelpfulCount int `gorm:"default:0" json:"helpful_count"`

	// Moderation
	IsDeleted bool `gorm:"default:false" json:"is_deleted"`
	IsHidden  bool `gorm:"default:false" json:"is_hidden"`

	Images []ReviewImage `gorm:"foreignKey:ReviewID" json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewImage is a photo attached at review-submission time. Images are
// immutable: created with the review, removed in cascade with it.
type ReviewImage struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReviewID   string `gorm:"not null;index" json:"review_id"`
	ImageURL   string `gorm:"not null" json:"image_url"`
	ImageOrder int    `gorm:"not null" json:"image_order"`

	CreatedAt time.Time `json:"created_at"`
}

// ReviewHelpful is a per-user "this review was helpful" mark. Its presence is
// the toggle state; the authoritative count is COUNT(*) over this table.
type ReviewHelpful struct {
	ID        string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReviewID  string  `gorm:"not null;index" json:"review_id"`
	Review    Review  `gorm:"foreignKey:ReviewID" json:"-"`
	ProfileID string  `gorm:"not null;index" json:"profile_id"`
	Profile   Profile `gorm:"foreignKey:ProfileID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReviewHelpful) TableName() string {
	return "review_helpful"
}

// DeleteRequestStatus is the admin-moderation state of a delete request.
type DeleteRequestStatus string

const (
	DeleteRequestPending  DeleteRequestStatus = "pending"
	DeleteRequestApproved DeleteRequestStatus = "approved"
	DeleteRequestRejected DeleteRequestStatus = "rejected"
)

// ReviewDeleteRequest is a user-submitted, admin-gated request to remove their
// own review. At most one pending request may exist per (review, requester);
// that invariant lives in a partial unique index, not just the pre-insert
// check.
type ReviewDeleteRequest struct {
	ID           string       `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReviewID    string       `gorm:"not null;index" json:"review_id"`
	Review      *Review      `gorm:"foreignKey:ReviewID" json:"review,omitempty"`
	ReviewType  FacilityType `gorm:"type:varchar(16);not null" json:"review_type"`
	RequesterID string       `gorm:"not null;index" json:"requester_id"`
	Requester   *Profile     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`

	Status        DeleteRequestStatus `gorm:"type:varchar(16);default:pending" json:"status"`
	RequestReason string              `gorm:"type:text" json:"request_reason"`
	AdminNotes    string              `gorm:"type:text" json:"admin_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ReviewDeleteRequest) TableName() string {
	return "review_delete_requests"
}
