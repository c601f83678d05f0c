package models

import "time"

// RefreshToken is one issued refresh token. Rotation revokes the presented
// token and records its successor in ReplacedBy.
type RefreshToken struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Token      string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	Revoked    bool       `gorm:"not null;default:false" json:"revoked"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *string    `gorm:"type:uuid" json:"replaced_by,omitempty"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Rotated reports whether the token was revoked by a refresh rather than a logout.
func (t *RefreshToken) Rotated() bool {
	return t.Revoked && t.ReplacedBy != nil
}
