package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bandejao/cantina-backend/internal/users"
	"github.com/bandejao/cantina-backend/pkg/db"
	"github.com/bandejao/cantina-backend/pkg/db/models"
	"github.com/bandejao/cantina-backend/pkg/enums"
	pkgerrors "github.com/bandejao/cantina-backend/pkg/errors"
	"github.com/bandejao/cantina-backend/pkg/security"
)

// Register creates a user with the CLIENTE role plus their empty cart in a
// single transaction and returns a freshly minted token.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup email")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		user, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: hash,
			Name:         strings.TrimSpace(req.Name),
			Role:         enums.UserRoleCliente,
		})
		if err != nil {
			// The unique index is the source of truth for races with a
			// concurrent registration of the same email.
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		cart := &models.Cart{ID: uuid.New(), UserID: user.ID}
		if err := tx.WithContext(ctx).Create(cart).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.mintToken(created)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  users.FromModel(created),
	}, nil
}
