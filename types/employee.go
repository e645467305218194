package types

// EmployeeSummary is the compact employee shape embedded in salary and
// attendance replies.
type EmployeeSummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	DeviceUserID string `json:"deviceUserId"`
}
