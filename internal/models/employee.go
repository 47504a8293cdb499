package models

// Employee mirrors an employee document owned by the HR API.
type Employee struct {
	ID         string `json:"_id,omitempty"`
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// EmployeeCreate is the payload accepted by the HR API when registering an employee.
type EmployeeCreate struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}
