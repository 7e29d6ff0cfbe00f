package model

import "time"

type Profile struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	TrialStartDate time.Time `json:"trial_start_date"`
	TrialEndDate   time.Time `json:"trial_end_date"`
}
