package client

import (
	"time"

	"github.com/google/uuid"
)

const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderUnknown = "unknown"
)

// Client is a recognized site visitor. first_seen/last_seen bounds
// against visit timestamps are reported by devices and not validated
// server-side; visit_count is maintained exclusively by RecordVisit.
type Client struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstSeen  time.Time `gorm:"column:first_seen;not null;index"`
	LastSeen   time.Time `gorm:"column:last_seen;not null;index"`
	VisitCount int       `gorm:"column:visit_count;not null;default:1;index"`
	Gender     string    `gorm:"column:gender;type:varchar(10);not null"`
	Age        int       `gorm:"column:age;not null"`
	Image      string    `gorm:"column:image;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Visits []ClientVisit `gorm:"foreignKey:ClientID;references:ID"`
}

func (Client) TableName() string {
	return "clients"
}

type ClientVisit struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID  uuid.UUID `gorm:"column:client_id;type:uuid;not null;index"`
	DeviceID  int       `gorm:"column:device_id;not null"`
	Datetime  time.Time `gorm:"column:datetime;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Client *Client `gorm:"foreignKey:ClientID;references:ID;constraint:OnDelete:CASCADE"`
}

func (ClientVisit) TableName() string {
	return "client_visits"
}
