package client

type CreateClientRequest struct {
	FirstSeen string `json:"first_seen" form:"first_seen" binding:"required"`
	LastSeen  string `json:"last_seen" form:"last_seen" binding:"required"`
	Gender    string `json:"gender" form:"gender" binding:"required,oneof=male female unknown"`
	Age       int    `json:"age" form:"age" binding:"required"`

	Image string `json:"-" form:"-"`
}

type UpdateClientRequest struct {
	FirstSeen string `json:"first_seen" form:"first_seen" binding:"required"`
	LastSeen  string `json:"last_seen" form:"last_seen" binding:"required"`
	Gender    string `json:"gender" form:"gender" binding:"required,oneof=male female unknown"`
	Age       int    `json:"age" form:"age" binding:"required"`

	Image string `json:"-" form:"-"`
}

type ClientResponse struct {
	ID             string          `json:"id"`
	FirstSeen      string          `json:"first_seen"`
	LastSeen       string          `json:"last_seen"`
	VisitCount     int             `json:"visit_count"`
	Gender         string          `json:"gender"`
	Age            int             `json:"age"`
	Image          string          `json:"image,omitempty"`
	VisitHistories []VisitResponse `json:"visit_histories"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

type CreateVisitRequest struct {
	ClientID string `json:"client" form:"client" binding:"required,uuid"`
	DeviceID int    `json:"device_id" form:"device_id" binding:"required"`
	Datetime string `json:"datetime" form:"datetime" binding:"required"`
}

type UpdateVisitRequest struct {
	ClientID string `json:"client" form:"client" binding:"required,uuid"`
	DeviceID int    `json:"device_id" form:"device_id" binding:"required"`
	Datetime string `json:"datetime" form:"datetime" binding:"required"`
}

type VisitResponse struct {
	ID       string `json:"id"`
	ClientID string `json:"client"`
	DeviceID int    `json:"device_id"`
	Datetime string `json:"datetime"`
}
