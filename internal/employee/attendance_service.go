package employee

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendify/internal/broadcast"
	employeeerrors "attendify/internal/employee/errors"
	"attendify/internal/events"
	"attendify/internal/shared/contextutil"
	"attendify/internal/shared/media"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type AttendanceService interface {
	Create(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)
	GetAll(ctx context.Context) ([]AttendanceResponse, error)
	GetByID(ctx context.Context, id string) (AttendanceResponse, error)
	Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Delete(ctx context.Context, id string) error
}

type attendanceService struct {
	repo   AttendanceRepository
	bus    broadcast.Bus
	media  media.Store
	logger *zap.Logger
}

func NewAttendanceService(
	repo AttendanceRepository,
	bus broadcast.Bus,
	mediaStore media.Store,
	logger ...*zap.Logger,
) AttendanceService {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &attendanceService{
		repo:   repo,
		bus:    bus,
		media:  mediaStore,
		logger: l,
	}
}

func (s *attendanceService) Create(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create attendance requested",
		zap.String("employee_id", req.EmployeeID),
		zap.Int("device_id", req.DeviceID),
	)

	at, err := events.ParseTime(req.Datetime)
	if err != nil {
		log.Warn("create attendance invalid datetime",
			zap.String("datetime", req.Datetime),
			zap.Error(err),
		)
		return AttendanceResponse{}, employeeerrors.ErrInvalidDatetime
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, employeeerrors.ErrEmployeeReferenceInvalid
	}

	rec := &Attendance{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		DeviceID:   req.DeviceID,
		Image:      req.Image,
		Datetime:   at,
		Score:      req.Score,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		log.Error("create attendance persist failed", zap.Error(err))
		return AttendanceResponse{}, mapAttendanceRepositoryError(err)
	}

	s.publish(ctx, events.New(events.KindEmployeeAttendance, events.OpCreate, rec.ID.String(), s.eventPayload(*rec)))

	log.Info("create attendance success",
		zap.String("attendance_id", rec.ID.String()),
	)
	return s.mapToResponse(*rec), nil
}

func (s *attendanceService) GetAll(ctx context.Context) ([]AttendanceResponse, error) {
	s.logger.Debug("get all attendances requested")
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all attendances failed", zap.Error(err))
		return nil, mapAttendanceRepositoryError(err)
	}

	res := make([]AttendanceResponse, len(rows))
	for i, a := range rows {
		res[i] = s.mapToResponse(a)
	}
	return res, nil
}

func (s *attendanceService) GetByID(ctx context.Context, id string) (AttendanceResponse, error) {
	s.logger.Debug("get attendance by id requested", zap.String("attendance_id", id))
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get attendance by id failed", zap.String("attendance_id", id), zap.Error(err))
		return AttendanceResponse{}, mapAttendanceRepositoryError(err)
	}
	return s.mapToResponse(*rec), nil
}

// Update is permitted by the API even though attendance rows are facts
// that devices never revise in practice.
func (s *attendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error) {
	s.logger.Debug("update attendance requested", zap.String("attendance_id", id))

	at, err := events.ParseTime(req.Datetime)
	if err != nil {
		return AttendanceResponse{}, employeeerrors.ErrInvalidDatetime
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, employeeerrors.ErrEmployeeReferenceInvalid
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("update attendance fetch existing failed", zap.Error(err))
		return AttendanceResponse{}, mapAttendanceRepositoryError(err)
	}

	oldImage := rec.Image
	rec.EmployeeID = employeeID
	rec.DeviceID = req.DeviceID
	rec.Datetime = at
	rec.Score = req.Score
	if req.Image != "" {
		rec.Image = req.Image
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		s.logger.Error("update attendance persist failed", zap.Error(err))
		return AttendanceResponse{}, mapAttendanceRepositoryError(err)
	}

	removeBlob(ctx, s.media, s.logger, oldImage, rec.Image)
	s.publish(ctx, events.New(events.KindEmployeeAttendance, events.OpUpdate, rec.ID.String(), s.eventPayload(*rec)))

	s.logger.Info("update attendance success", zap.String("attendance_id", id))
	return s.mapToResponse(*rec), nil
}

func (s *attendanceService) Delete(ctx context.Context, id string) error {
	s.logger.Debug("delete attendance requested", zap.String("attendance_id", id))

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("delete attendance fetch existing failed", zap.Error(err))
		return mapAttendanceRepositoryError(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete attendance failed", zap.Error(err))
		return mapAttendanceRepositoryError(err)
	}

	removeBlob(ctx, s.media, s.logger, rec.Image, "")
	s.publish(ctx, events.New(events.KindEmployeeAttendance, events.OpDelete, id, map[string]any{
		"id":          id,
		"employee_id": rec.EmployeeID.String(),
	}))

	s.logger.Info("delete attendance success", zap.String("attendance_id", id))
	return nil
}

func (s *attendanceService) publish(ctx context.Context, env events.Envelope) {
	if err := s.bus.Publish(ctx, env); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("publish event failed",
			zap.String("event", env.Event),
			zap.Error(err),
		)
	}
}

func (s *attendanceService) eventPayload(a Attendance) map[string]any {
	return map[string]any{
		"id":          a.ID.String(),
		"employee_id": a.EmployeeID.String(),
		"device_id":   a.DeviceID,
		"image":       s.media.URL(a.Image),
		"datetime":    events.FormatTime(a.Datetime),
		"score":       a.Score,
	}
}

func (s *attendanceService) mapToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:         a.ID.String(),
		EmployeeID: a.EmployeeID.String(),
		DeviceID:   a.DeviceID,
		Image:      s.media.URL(a.Image),
		Datetime:   events.FormatTime(a.Datetime),
		Score:      a.Score,
		CreatedAt:  events.FormatTime(a.CreatedAt),
		UpdatedAt:  events.FormatTime(a.UpdatedAt),
	}
}
