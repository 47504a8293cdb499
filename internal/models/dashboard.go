package models

// DashboardCounts is the headline summary shown on the console landing page.
type DashboardCounts struct {
	EmployeeCount   int `json:"employee_count"`
	AttendanceCount int `json:"attendance_count"`
}
