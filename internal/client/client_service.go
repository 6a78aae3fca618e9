package client

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendify/internal/broadcast"
	clienterrors "attendify/internal/client/errors"
	"attendify/internal/events"
	"attendify/internal/shared/contextutil"
	"attendify/internal/shared/media"
)

//go:generate mockgen -source=client_service.go -destination=mock/client_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (ClientResponse, error)
	GetAll(ctx context.Context) ([]ClientResponse, error)
	GetByID(ctx context.Context, id string) (ClientResponse, error)
	Update(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error)
	Delete(ctx context.Context, id string) error

	RecordVisit(ctx context.Context, req CreateVisitRequest) (VisitResponse, error)
	GetAllVisits(ctx context.Context) ([]VisitResponse, error)
	GetVisitByID(ctx context.Context, id string) (VisitResponse, error)
	UpdateVisit(ctx context.Context, id string, req UpdateVisitRequest) (VisitResponse, error)
	DeleteVisit(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	visits VisitRepository
	db     *sql.DB
	bus    broadcast.Bus
	media  media.Store
	logger *zap.Logger
}

func NewService(
	repo Repository,
	visits VisitRepository,
	db *sql.DB,
	bus broadcast.Bus,
	mediaStore media.Store,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("client.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("client.service")
	}
	return &service{
		repo:   repo,
		visits: visits,
		db:     db,
		bus:    bus,
		media:  mediaStore,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateClientRequest) (ClientResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create client requested")

	firstSeen, err := events.ParseTime(req.FirstSeen)
	if err != nil {
		return ClientResponse{}, clienterrors.ErrInvalidDatetime
	}
	lastSeen, err := events.ParseTime(req.LastSeen)
	if err != nil {
		return ClientResponse{}, clienterrors.ErrInvalidDatetime
	}

	cl := &Client{
		ID:         uuid.New(),
		FirstSeen:  firstSeen,
		LastSeen:   lastSeen,
		VisitCount: 1,
		Gender:     req.Gender,
		Age:        req.Age,
		Image:      req.Image,
	}

	if err := s.repo.Create(ctx, cl); err != nil {
		log.Error("create client persist failed", zap.Error(err))
		return ClientResponse{}, mapRepositoryError(err)
	}

	s.publish(ctx, events.New(events.KindClient, events.OpCreate, cl.ID.String(), s.clientPayload(*cl, nil)))

	log.Info("create client success",
		zap.String("client_id", cl.ID.String()),
	)
	return s.mapToResponse(*cl, nil), nil
}

func (s *service) GetAll(ctx context.Context) ([]ClientResponse, error) {
	s.logger.Debug("get all clients requested")
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all clients failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	res := make([]ClientResponse, len(rows))
	for i, cl := range rows {
		res[i] = s.mapToResponse(cl, cl.Visits)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (ClientResponse, error) {
	s.logger.Debug("get client by id requested", zap.String("client_id", id))
	cl, visits, err := s.loadWithVisits(ctx, id)
	if err != nil {
		s.logger.Warn("get client by id failed", zap.String("client_id", id), zap.Error(err))
		return ClientResponse{}, err
	}
	return s.mapToResponse(*cl, visits), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update client requested",
		zap.String("client_id", id),
	)

	firstSeen, err := events.ParseTime(req.FirstSeen)
	if err != nil {
		return ClientResponse{}, clienterrors.ErrInvalidDatetime
	}
	lastSeen, err := events.ParseTime(req.LastSeen)
	if err != nil {
		return ClientResponse{}, clienterrors.ErrInvalidDatetime
	}

	cl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Warn("update client fetch existing failed", zap.Error(err))
		return ClientResponse{}, mapRepositoryError(err)
	}

	oldImage := cl.Image
	cl.FirstSeen = firstSeen
	cl.LastSeen = lastSeen
	cl.Gender = req.Gender
	cl.Age = req.Age
	if req.Image != "" {
		cl.Image = req.Image
	}

	if err := s.repo.Update(ctx, cl); err != nil {
		log.Error("update client persist failed", zap.Error(err))
		return ClientResponse{}, mapRepositoryError(err)
	}

	visits, err := s.repo.FindVisitsByClient(ctx, id)
	if err != nil {
		return ClientResponse{}, mapRepositoryError(err)
	}

	removeBlob(ctx, s.media, s.logger, oldImage, cl.Image)
	s.publish(ctx, events.New(events.KindClient, events.OpUpdate, cl.ID.String(), s.clientPayload(*cl, visits)))

	log.Info("update client success", zap.String("client_id", id))
	return s.mapToResponse(*cl, visits), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("delete client requested",
		zap.String("client_id", id),
	)

	cl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Warn("delete client fetch existing failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Warn("delete client failed", zap.String("client_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	// Visit rows cascade away with the client; the envelope carries the
	// identifying key only.
	removeBlob(ctx, s.media, s.logger, cl.Image, "")
	s.publish(ctx, events.New(events.KindClient, events.OpDelete, id, map[string]any{"id": id}))

	log.Info("delete client success", zap.String("client_id", id))
	return nil
}

// RecordVisit appends a visit fact and bumps the owning client's
// visit_count in one transaction. The counter moves by a single
// in-database UPDATE, so overlapping visits for the same client can
// never lose an increment. Events go out only after commit: first the
// refreshed client snapshot, then the visit itself.
func (s *service) RecordVisit(ctx context.Context, req CreateVisitRequest) (VisitResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("record visit requested",
		zap.String("client_id", req.ClientID),
	)

	datetime, err := events.ParseTime(req.Datetime)
	if err != nil {
		return VisitResponse{}, clienterrors.ErrInvalidDatetime
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return VisitResponse{}, clienterrors.ErrClientNotFound
	}

	visit := &ClientVisit{
		ID:       uuid.New(),
		ClientID: clientID,
		DeviceID: req.DeviceID,
		Datetime: datetime,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("record visit begin tx failed", zap.Error(err))
		return VisitResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.visits.WithTx(tx)

	if err := qtx.Insert(ctx, visit); err != nil {
		log.Error("record visit insert failed", zap.Error(err))
		return VisitResponse{}, mapVisitRepositoryError(err)
	}

	newCount, err := qtx.IncrementVisitCount(ctx, req.ClientID)
	if err != nil {
		log.Error("record visit increment failed", zap.Error(err))
		return VisitResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("record visit commit failed", zap.Error(err))
		return VisitResponse{}, err
	}

	if cl, visits, err := s.loadWithVisits(ctx, req.ClientID); err == nil {
		s.publish(ctx, events.New(events.KindClient, events.OpUpdate, cl.ID.String(), s.clientPayload(*cl, visits)))
	} else {
		log.Warn("record visit snapshot reload failed", zap.String("client_id", req.ClientID), zap.Error(err))
	}
	s.publish(ctx, events.New(events.KindClientVisit, events.OpCreate, visit.ID.String(), s.visitPayload(*visit)))

	log.Info("record visit success",
		zap.String("visit_id", visit.ID.String()),
		zap.String("client_id", req.ClientID),
		zap.Int("visit_count", newCount),
	)
	return s.mapVisitToResponse(*visit), nil
}

func (s *service) GetAllVisits(ctx context.Context) ([]VisitResponse, error) {
	s.logger.Debug("get all visits requested")
	rows, err := s.visits.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all visits failed", zap.Error(err))
		return nil, mapVisitRepositoryError(err)
	}

	res := make([]VisitResponse, len(rows))
	for i, v := range rows {
		res[i] = s.mapVisitToResponse(v)
	}
	return res, nil
}

func (s *service) GetVisitByID(ctx context.Context, id string) (VisitResponse, error) {
	s.logger.Debug("get visit by id requested", zap.String("visit_id", id))
	v, err := s.visits.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get visit by id failed", zap.String("visit_id", id), zap.Error(err))
		return VisitResponse{}, mapVisitRepositoryError(err)
	}
	return s.mapVisitToResponse(*v), nil
}

// UpdateVisit rewrites a recorded fact in place, device re-submissions
// mostly. It never touches visit_count.
func (s *service) UpdateVisit(ctx context.Context, id string, req UpdateVisitRequest) (VisitResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update visit requested",
		zap.String("visit_id", id),
	)

	datetime, err := events.ParseTime(req.Datetime)
	if err != nil {
		return VisitResponse{}, clienterrors.ErrInvalidDatetime
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return VisitResponse{}, clienterrors.ErrClientReferenceInvalid
	}

	v, err := s.visits.FindByID(ctx, id)
	if err != nil {
		log.Warn("update visit fetch existing failed", zap.Error(err))
		return VisitResponse{}, mapVisitRepositoryError(err)
	}

	v.ClientID = clientID
	v.DeviceID = req.DeviceID
	v.Datetime = datetime

	if err := s.visits.Update(ctx, v); err != nil {
		log.Error("update visit persist failed", zap.Error(err))
		return VisitResponse{}, mapVisitRepositoryError(err)
	}

	s.publish(ctx, events.New(events.KindClientVisit, events.OpUpdate, v.ID.String(), s.visitPayload(*v)))

	log.Info("update visit success", zap.String("visit_id", id))
	return s.mapVisitToResponse(*v), nil
}

func (s *service) DeleteVisit(ctx context.Context, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("delete visit requested",
		zap.String("visit_id", id),
	)

	v, err := s.visits.FindByID(ctx, id)
	if err != nil {
		log.Warn("delete visit fetch existing failed", zap.Error(err))
		return mapVisitRepositoryError(err)
	}

	if err := s.visits.Delete(ctx, id); err != nil {
		log.Warn("delete visit failed", zap.String("visit_id", id), zap.Error(err))
		return mapVisitRepositoryError(err)
	}

	s.publish(ctx, events.New(events.KindClientVisit, events.OpDelete, id, map[string]any{
		"id":     id,
		"client": v.ClientID.String(),
	}))

	log.Info("delete visit success", zap.String("visit_id", id))
	return nil
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

func (s *service) loadWithVisits(ctx context.Context, id string) (*Client, []ClientVisit, error) {
	cl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, mapRepositoryError(err)
	}
	visits, err := s.repo.FindVisitsByClient(ctx, id)
	if err != nil {
		return nil, nil, mapRepositoryError(err)
	}
	return cl, visits, nil
}

func (s *service) clientPayload(cl Client, visits []ClientVisit) map[string]any {
	histories := make([]map[string]any, len(visits))
	for i, v := range visits {
		histories[i] = s.visitPayload(v)
	}
	return map[string]any{
		"id":              cl.ID.String(),
		"first_seen":      events.FormatTime(cl.FirstSeen),
		"last_seen":       events.FormatTime(cl.LastSeen),
		"visit_count":     cl.VisitCount,
		"gender":          cl.Gender,
		"age":             cl.Age,
		"image":           s.media.URL(cl.Image),
		"visit_histories": histories,
	}
}

func (s *service) visitPayload(v ClientVisit) map[string]any {
	return map[string]any{
		"id":        v.ID.String(),
		"client":    v.ClientID.String(),
		"device_id": v.DeviceID,
		"datetime":  events.FormatTime(v.Datetime),
	}
}

func (s *service) mapToResponse(cl Client, visits []ClientVisit) ClientResponse {
	histories := make([]VisitResponse, len(visits))
	for i, v := range visits {
		histories[i] = s.mapVisitToResponse(v)
	}
	return ClientResponse{
		ID:             cl.ID.String(),
		FirstSeen:      events.FormatTime(cl.FirstSeen),
		LastSeen:       events.FormatTime(cl.LastSeen),
		VisitCount:     cl.VisitCount,
		Gender:         cl.Gender,
		Age:            cl.Age,
		Image:          s.media.URL(cl.Image),
		VisitHistories: histories,
		CreatedAt:      events.FormatTime(cl.CreatedAt),
		UpdatedAt:      events.FormatTime(cl.UpdatedAt),
	}
}

func (s *service) mapVisitToResponse(v ClientVisit) VisitResponse {
	return VisitResponse{
		ID:       v.ID.String(),
		ClientID: v.ClientID.String(),
		DeviceID: v.DeviceID,
		Datetime: events.FormatTime(v.Datetime),
	}
}
