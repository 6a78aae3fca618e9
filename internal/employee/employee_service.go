package employee

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"attendify/internal/broadcast"
	"attendify/internal/events"
	"attendify/internal/shared/contextutil"
	"attendify/internal/shared/media"
)

const EmployeeOptionsKey = "employees:options"

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeOption, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	bus    broadcast.Bus
	media  media.Store
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(
	repo Repository,
	bus broadcast.Bus,
	mediaStore media.Store,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		repo:   repo,
		bus:    bus,
		media:  mediaStore,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create employee requested",
		zap.String("email", req.Email),
	)

	empl := &Employee{
		ID:          uuid.New(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Image:       req.Image,
	}

	if err := s.repo.Create(ctx, empl); err != nil {
		log.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// The row is committed at this point; subscribers may act on the
	// event and immediately read it back.
	s.publish(ctx, events.New(events.KindEmployee, events.OpCreate, empl.ID.String(), s.eventPayload(*empl)))
	s.invalidateOptionsCache(ctx)

	log.Info("create employee success",
		zap.String("employee_id", empl.ID.String()),
	)
	return s.mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested")
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return s.mapToListResponse(rows), nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOption, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result(); err == nil {
			var resp []EmployeeOption
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Singleflight keeps a cache miss from stampeding the database when
	// many dashboards load at once.
	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		rows, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOption, len(rows))
		for i, e := range rows {
			resp[i] = EmployeeOption{
				ID:        e.ID.String(),
				FirstName: e.FirstName,
				LastName:  e.LastName,
			}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}
	return v.([]EmployeeOption), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return s.mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update employee requested",
		zap.String("employee_id", id),
	)

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Warn("update employee fetch existing failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	oldImage := empl.Image
	empl.FirstName = req.FirstName
	empl.LastName = req.LastName
	empl.Email = req.Email
	empl.PhoneNumber = req.PhoneNumber
	if req.Image != "" {
		empl.Image = req.Image
	}

	if err := s.repo.Update(ctx, empl); err != nil {
		log.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	removeBlob(ctx, s.media, s.logger, oldImage, empl.Image)
	s.publish(ctx, events.New(events.KindEmployee, events.OpUpdate, empl.ID.String(), s.eventPayload(*empl)))
	s.invalidateOptionsCache(ctx)

	log.Info("update employee success", zap.String("employee_id", id))
	return s.mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("delete employee requested",
		zap.String("employee_id", id),
	)

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Warn("delete employee fetch existing failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Warn("delete employee failed", zap.String("employee_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	// Subscribers may no longer resolve the row; the envelope carries
	// the identifying key only.
	removeBlob(ctx, s.media, s.logger, empl.Image, "")
	s.publish(ctx, events.New(events.KindEmployee, events.OpDelete, id, map[string]any{"id": id}))
	s.invalidateOptionsCache(ctx)

	log.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

// publish sends an envelope for an already-committed mutation. Bus
// failures are logged and swallowed: the stored row is the source of
// truth and must not be rolled back over a notification failure.
func (s *service) publish(ctx context.Context, env events.Envelope) {
	if err := s.bus.Publish(ctx, env); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("publish event failed",
			zap.String("event", env.Event),
			zap.Error(err),
		)
	}
}

// removeBlob deletes a stored image that the row no longer references.
// Best effort: the row mutation already committed, an orphaned blob is
// only logged.
func removeBlob(ctx context.Context, store media.Store, fallback *zap.Logger, old, current string) {
	if old == "" || old == current {
		return
	}
	if err := store.Remove(ctx, old); err != nil {
		contextutil.GetLogger(ctx, fallback).Warn("remove stored image failed",
			zap.String("ref", old),
			zap.Error(err),
		)
	}
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeOptionsKey).Err(); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", EmployeeOptionsKey),
		)
	}
}

func (s *service) eventPayload(e Employee) map[string]any {
	return map[string]any{
		"id":           e.ID.String(),
		"first_name":   e.FirstName,
		"last_name":    e.LastName,
		"email":        e.Email,
		"phone_number": e.PhoneNumber,
		"image":        s.media.URL(e.Image),
	}
}

func (s *service) mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID.String(),
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Email:       e.Email,
		PhoneNumber: e.PhoneNumber,
		Image:       s.media.URL(e.Image),
		CreatedAt:   events.FormatTime(e.CreatedAt),
		UpdatedAt:   events.FormatTime(e.UpdatedAt),
	}
}

func (s *service) mapToListResponse(rows []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(rows))
	for i, e := range rows {
		res[i] = s.mapToResponse(e)
	}
	return res
}
