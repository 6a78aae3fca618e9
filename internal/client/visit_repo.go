package client

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// execer abstracts *sql.DB and *sql.Tx so visit writes run on the
// caller's transaction when one is open.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// VisitRepository persists visit facts. Insert and IncrementVisitCount
// are raw SQL honoring WithTx: recording a visit must pair the row
// insert with the counter bump in one atomic unit, and the increment
// itself is a single UPDATE so concurrent visits to the same client
// serialize on the row instead of racing a read-then-write.
//
//go:generate mockgen -source=visit_repo.go -destination=mock/visit_repo_mock.go -package=mock
type VisitRepository interface {
	WithTx(tx *sql.Tx) VisitRepository
	Insert(ctx context.Context, v *ClientVisit) error
	IncrementVisitCount(ctx context.Context, clientID string) (int, error)
	FindAll(ctx context.Context) ([]ClientVisit, error)
	FindByID(ctx context.Context, id string) (*ClientVisit, error)
	Update(ctx context.Context, v *ClientVisit) error
	Delete(ctx context.Context, id string) error
}

type visitRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewVisitRepository(db *gorm.DB, sqlDB *sql.DB) VisitRepository {
	return &visitRepository{db: db, sqlDB: sqlDB}
}

func (r *visitRepository) WithTx(tx *sql.Tx) VisitRepository {
	return &visitRepository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *visitRepository) execer() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *visitRepository) Insert(ctx context.Context, v *ClientVisit) error {
	query := `
        INSERT INTO client_visits (id, client_id, device_id, datetime, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5)
    `
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := r.execer().ExecContext(
		ctx, query,
		v.ID.String(), v.ClientID.String(), v.DeviceID, v.Datetime, now,
	)
	return err
}

func (r *visitRepository) IncrementVisitCount(ctx context.Context, clientID string) (int, error) {
	query := `
        UPDATE clients
        SET visit_count = visit_count + 1, updated_at = now()
        WHERE id = $1
        RETURNING visit_count
    `
	var count int
	err := r.execer().QueryRowContext(ctx, query, clientID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *visitRepository) FindAll(ctx context.Context) ([]ClientVisit, error) {
	var rows []ClientVisit
	err := r.db.WithContext(ctx).
		Order("datetime DESC").
		Find(&rows).Error
	return rows, err
}

func (r *visitRepository) FindByID(ctx context.Context, id string) (*ClientVisit, error) {
	var v ClientVisit
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *visitRepository) Update(ctx context.Context, v *ClientVisit) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *visitRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&ClientVisit{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
