package models

import "time"

type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Name      string    `gorm:"unique;not null" json:"name"`

	// Department-level leverage defaults; nil falls through to the
	// global constants.
	CheckInLeverageMin  *int `json:"checkInLeverageMin"`
	CheckOutLeverageMin *int `json:"checkOutLeverageMin"`
}
