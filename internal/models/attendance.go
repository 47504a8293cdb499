package models

// AttendanceStatus represents the binary status of an attendance record.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Toggle flips Present and Absent.
func (s AttendanceStatus) Toggle() AttendanceStatus {
	if s == AttendanceStatusPresent {
		return AttendanceStatusAbsent
	}
	return AttendanceStatusPresent
}

// AttendanceRecord mirrors an attendance document owned by the HR API.
// Date is an ISO 8601 calendar day (YYYY-MM-DD) with no time component.
type AttendanceRecord struct {
	ID           string           `json:"_id"`
	EmployeeID   string           `json:"employee_id"`
	Date         string           `json:"date"`
	Status       AttendanceStatus `json:"status"`
	EmployeeName string           `json:"employee_name,omitempty"`
}

// AttendanceCreate is the payload accepted by the HR API when marking attendance.
type AttendanceCreate struct {
	EmployeeID string           `json:"employee_id"`
	Date       string           `json:"date"`
	Status     AttendanceStatus `json:"status"`
}

// FilterCriteria narrows an attendance list. Empty fields are inactive.
type FilterCriteria struct {
	EmployeeID string `json:"employee_id,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}

// Active reports whether any predicate is set.
func (f FilterCriteria) Active() bool {
	return f.EmployeeID != "" || f.StartDate != "" || f.EndDate != ""
}

// AttendanceStats summarises a filtered attendance view.
type AttendanceStats struct {
	Total      int `json:"total"`
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	Percentage int `json:"percentage"`
}

// AttendanceView is the filtered, display-ordered attendance page.
// Stats is nil when no criterion is active.
type AttendanceView struct {
	Records   []AttendanceRecord `json:"records"`
	Stats     *AttendanceStats   `json:"stats"`
	Employees []Employee         `json:"employees"`
	Criteria  FilterCriteria     `json:"criteria"`
}
