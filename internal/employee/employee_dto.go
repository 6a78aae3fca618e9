package employee

type CreateEmployeeRequest struct {
	FirstName   string `json:"first_name" form:"first_name" binding:"required"`
	LastName    string `json:"last_name" form:"last_name" binding:"required"`
	Email       string `json:"email" form:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" form:"phone_number" binding:"required"`

	// Image is the stored blob reference, set by the handler after the
	// multipart upload is persisted.
	Image string `json:"-" form:"-"`
}

type UpdateEmployeeRequest struct {
	FirstName   string `json:"first_name" form:"first_name" binding:"required"`
	LastName    string `json:"last_name" form:"last_name" binding:"required"`
	Email       string `json:"email" form:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" form:"phone_number" binding:"required"`

	Image string `json:"-" form:"-"`
}

type EmployeeResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Image       string `json:"image,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// EmployeeOption is the trimmed listing served to dashboard pickers.
type EmployeeOption struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type CreateAttendanceRequest struct {
	EmployeeID string  `json:"employee_id" form:"employee_id" binding:"required,uuid"`
	DeviceID   int     `json:"device_id" form:"device_id" binding:"required"`
	Datetime   string  `json:"datetime" form:"datetime" binding:"required"`
	Score      float64 `json:"score" form:"score" binding:"required"`

	Image string `json:"-" form:"-"`
}

type UpdateAttendanceRequest struct {
	EmployeeID string  `json:"employee_id" form:"employee_id" binding:"required,uuid"`
	DeviceID   int     `json:"device_id" form:"device_id" binding:"required"`
	Datetime   string  `json:"datetime" form:"datetime" binding:"required"`
	Score      float64 `json:"score" form:"score" binding:"required"`

	Image string `json:"-" form:"-"`
}

type AttendanceResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	DeviceID   int     `json:"device_id"`
	Image      string  `json:"image,omitempty"`
	Datetime   string  `json:"datetime"`
	Score      float64 `json:"score"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}
