package models

import "time"

type Employee struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Name          string    `gorm:"not null" json:"name"`
	Email         string    `gorm:"unique" json:"email"`
	PhoneNumber   string    `gorm:"type:varchar(15)" json:"phoneNumber"`
	DeviceUserID  string    `gorm:"uniqueIndex;type:varchar(24);not null" json:"deviceUserId"`
	Role          int       `gorm:"default:3" json:"role"`
	Status        int       `gorm:"default:1" json:"status"`
	JoinedAt      time.Time `json:"joinedAt"`

	Assignments []DepartmentAssignment `json:"assignments" gorm:"foreignKey:EmployeeID"`
}
