package model

import "time"

// BlacklistedToken is an access token revoked by sign-out before its expiry.
type BlacklistedToken struct {
	Token     string    `gorm:"type:varchar(512);primaryKey"`
	ExpiresAt time.Time `gorm:"index"`
}
