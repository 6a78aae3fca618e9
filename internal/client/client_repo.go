package client

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=client_repo.go -destination=mock/client_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, cl *Client) error
	FindAll(ctx context.Context) ([]Client, error)
	FindByID(ctx context.Context, id string) (*Client, error)
	FindVisitsByClient(ctx context.Context, clientID string) ([]ClientVisit, error)
	Update(ctx context.Context, cl *Client) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, cl *Client) error {
	return r.db.WithContext(ctx).Create(cl).Error
}

// FindAll loads every client with its visit rows in one preloaded
// query pair instead of one visit query per client.
func (r *repository) FindAll(ctx context.Context) ([]Client, error) {
	var rows []Client
	err := r.db.WithContext(ctx).
		Preload("Visits", func(db *gorm.DB) *gorm.DB {
			return db.Order("datetime ASC")
		}).
		Order("last_seen DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Client, error) {
	var cl Client
	err := r.db.WithContext(ctx).First(&cl, "id = ?", id).Error
	return &cl, err
}

func (r *repository) FindVisitsByClient(ctx context.Context, clientID string) ([]ClientVisit, error) {
	var rows []ClientVisit
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("datetime ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, cl *Client) error {
	return r.db.WithContext(ctx).Save(cl).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Client{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
