package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
	RoleDevice = "device"
)

type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Username  string    `gorm:"column:username;type:varchar(150);not null;uniqueIndex:uq_users_username"`
	Email     string    `gorm:"column:email;type:varchar(254)"`
	FirstName string    `gorm:"column:first_name;type:varchar(150)"`
	LastName  string    `gorm:"column:last_name;type:varchar(150)"`
	Password  string    `gorm:"column:password;type:text;not null"`
	Role      string    `gorm:"column:role;type:varchar(50);not null;default:viewer"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
