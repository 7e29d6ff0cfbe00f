package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrialPeriod is the length of the free trial granted to every new account.
var TrialPeriod = 7 * 24 * time.Hour

// User is an account. Its ID is the opaque identity referenced by profiles and chats.
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;unique" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// AfterCreate opens the trial window. It runs inside the user insert transaction,
// so an account never exists without its profile.
func (u *User) AfterCreate(tx *gorm.DB) (err error) {
	start := u.CreatedAt
	if start.IsZero() {
		start = time.Now()
	}
	return tx.Create(&Profile{
		UserID:         u.ID,
		TrialStartDate: start,
		TrialEndDate:   start.Add(TrialPeriod),
	}).Error
}
