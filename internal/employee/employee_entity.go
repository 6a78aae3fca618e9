package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstName   string    `gorm:"column:first_name;type:varchar(255);not null;index:idx_employees_name"`
	LastName    string    `gorm:"column:last_name;type:varchar(255);not null;index:idx_employees_name"`
	Email       string    `gorm:"column:email;type:text;not null;uniqueIndex:uq_employees_email"`
	PhoneNumber string    `gorm:"column:phone_number;type:varchar(20);not null;uniqueIndex:uq_employees_phone"`
	Image       string    `gorm:"column:image;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}

// Attendance is an immutable recognition fact reported by a device. Rows
// are owned by their employee and removed with it.
type Attendance struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index"`
	DeviceID   int       `gorm:"column:device_id;not null;index"`
	Image      string    `gorm:"column:image;type:text"`
	Datetime   time.Time `gorm:"column:datetime;not null;index"`
	Score      float64   `gorm:"column:score;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Attendance) TableName() string {
	return "employee_attendances"
}
