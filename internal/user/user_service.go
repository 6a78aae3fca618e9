package user

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"attendify/internal/shared/contextutil"
	usererrors "attendify/internal/user/errors"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Update(ctx context.Context, actorID, actorRole, id string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, actorID, actorRole, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create user requested",
		zap.String("username", req.Username),
	)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("hash password failed", zap.Error(err))
		return UserResponse{}, err
	}

	role := req.Role
	if role == "" {
		role = RoleViewer
	}

	u := &User{
		ID:        uuid.New(),
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
		Role:      role,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		log.Error("create user persist failed", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	log.Info("create user success",
		zap.String("user_id", u.ID.String()),
	)
	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	s.logger.Debug("get all users requested")
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all users failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	res := make([]UserResponse, len(rows))
	for i, u := range rows {
		res[i] = mapToResponse(u)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	s.logger.Debug("get user by id requested", zap.String("user_id", id))
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get user by id failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*u), nil
}

// Update applies an admin-or-self rule on top of route authorization:
// a non-admin may edit only their own record, and only an admin may
// change a role.
func (s *service) Update(ctx context.Context, actorID, actorRole, id string, req UpdateUserRequest) (UserResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update user requested",
		zap.String("user_id", id),
	)

	if actorRole != RoleAdmin && actorID != id {
		return UserResponse{}, usererrors.ErrNotPermitted
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Warn("update user fetch existing failed", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	u.Username = req.Username
	u.Email = req.Email
	u.FirstName = req.FirstName
	u.LastName = req.LastName

	if req.Role != "" && req.Role != u.Role {
		if actorRole != RoleAdmin {
			return UserResponse{}, usererrors.ErrNotPermitted
		}
		u.Role = req.Role
	}

	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("hash password failed", zap.Error(err))
			return UserResponse{}, err
		}
		u.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		log.Error("update user persist failed", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	log.Info("update user success", zap.String("user_id", id))
	return mapToResponse(*u), nil
}

func (s *service) Delete(ctx context.Context, actorID, actorRole, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("delete user requested",
		zap.String("user_id", id),
	)

	if actorRole != RoleAdmin && actorID != id {
		return usererrors.ErrNotPermitted
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Warn("delete user failed", zap.String("user_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	log.Info("delete user success", zap.String("user_id", id))
	return nil
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: u.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
