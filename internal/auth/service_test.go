package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bandejao/cantina-backend/internal/users"
	"github.com/bandejao/cantina-backend/pkg/config"
	"github.com/bandejao/cantina-backend/pkg/db/models"
	"github.com/bandejao/cantina-backend/pkg/enums"
	pkgerrors "github.com/bandejao/cantina-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	usersTable := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'CLIENTE',
  created_at DATETIME,
  updated_at DATETIME
);`
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(usersTable).Error)
	require.NoError(t, db.Exec(carts).Error)
	return db
}

func newAuthService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		UserRepo: users.NewRepository(db),
		TxRunner: &gormTxRunner{db: db},
		JWTConfig: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "cantina-test",
			ExpirationMinutes: 60,
		},
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8 * 1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterDefaultsToClienteAndCreatesCart(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:    "A@Test.com",
		Password: "x123456",
		Name:     "A",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, enums.UserRoleCliente, resp.User.Role)
	assert.Equal(t, "a@test.com", resp.User.Email)

	var cartCount int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", resp.User.ID).Count(&cartCount).Error)
	assert.Equal(t, int64(1), cartCount)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	req := RegisterRequest{Email: "a@test.com", Password: "x123456", Name: "A"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@test.com", Password: "x123456", Name: "A"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "a@test.com", Password: "wrong"})
	require.Error(t, err)
	assert.Nil(t, resp)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	wrongPasswordMsg := typed.Message()

	resp, err = svc.Login(ctx, LoginRequest{Email: "unknown@test.com", Password: "x123456"})
	require.Error(t, err)
	assert.Nil(t, resp)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	// Same message for unknown email and wrong password.
	assert.Equal(t, wrongPasswordMsg, typed.Message())
}

func TestLoginSucceedsAndMeReturnsProfile(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "a@test.com", Password: "x123456", Name: "A"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "a@test.com", Password: "x123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	me, err := svc.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@test.com", me.Email)
	assert.Equal(t, enums.UserRoleCliente, me.Role)
}
