package dto

import "time"

// AttendanceQuery are the list-endpoint filters.
type AttendanceQuery struct {
	EmployeeID   uint   `form:"employeeId"`
	DepartmentID uint   `form:"departmentId"`
	From         string `form:"from"`
	To           string `form:"to"`
	Status       string `form:"status"`
	Page         int    `form:"page,default=1"`
	Limit        int    `form:"limit,default=31"`
}

// ManualAttendanceRequest creates or corrects a record by hand. Times
// use "2006-01-02 15:04:05"; date uses "2006-01-02". An explicit Status
// pins the record; leaving it empty lets the status engine classify.
type ManualAttendanceRequest struct {
	EmployeeID   uint   `json:"employeeId" binding:"required"`
	DepartmentID uint   `json:"departmentId"`
	Date         string `json:"date" binding:"required"`
	CheckIn      string `json:"checkIn"`
	CheckOut     string `json:"checkOut"`
	Status       string `json:"status"`
	Remarks      string `json:"remarks"`
}

// AttendanceResponse is one record in a list reply.
type AttendanceResponse struct {
	ID            uint       `json:"id"`
	EmployeeID    uint       `json:"employeeId"`
	EmployeeName  string     `json:"employeeName"`
	DepartmentID  uint       `json:"departmentId"`
	Date          time.Time  `json:"date"`
	CheckIn       *time.Time `json:"checkIn"`
	CheckOut      *time.Time `json:"checkOut"`
	Status        string     `json:"status"`
	WorkingHours  float64    `json:"workingHours"`
	IsManualEntry bool       `json:"isManualEntry"`
	DeviceID      string     `json:"deviceId"`
	Remarks       string     `json:"remarks"`
}
