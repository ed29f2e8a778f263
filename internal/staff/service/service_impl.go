package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mingchang/meatshop/internal/clock"
	"github.com/mingchang/meatshop/internal/staff/domain"
	"github.com/mingchang/meatshop/internal/staff/password"
	"github.com/mingchang/meatshop/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// dummyHash keeps the timing of unknown usernames close to wrong passwords.
var dummyHash, _ = password.Hash("meatshop-timing-guard")

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("staff.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Authenticate(ctx context.Context, username, plain string) (*domain.StaffUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		password.Verify(plain, dummyHash)
		return nil, domain.ErrInvalidCredentials
	}
	if !password.Verify(plain, user.PasswordHash) || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	if err := s.repo.TouchLogin(ctx, s.db, user.ID, now); err != nil {
		s.log.Warn("failed to record staff login", zap.String("username", username), zap.Error(err))
	}
	if password.NeedsRehash(user.PasswordHash) {
		if hash, err := password.Hash(plain); err == nil {
			if err := s.repo.UpdatePasswordHash(ctx, s.db, user.ID, hash, now); err != nil {
				s.log.Warn("failed to upgrade password hash", zap.String("username", username), zap.Error(err))
			}
		}
	}
	user.LastLoginAt = &now
	return user, nil
}

func (s *Service) Create(ctx context.Context, username, plain, role string) (*domain.StaffUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 150 || strings.ContainsAny(username, ": \t") {
		return nil, domain.ErrInvalidUsername
	}
	if len(plain) < minPasswordLength {
		return nil, domain.ErrInvalidPassword
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	user := &domain.StaffUser{
		ID:           s.genID.Generate().Int64(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}

	s.log.Info("staff user created", zap.String("username", username), zap.String("role", role))
	return user, nil
}
