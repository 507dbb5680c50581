package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/health-helper/internal/config"
	"github.com/vladimiradmaev/health-helper/internal/database"
)

func TestRegisterUser(t *testing.T) {
	db, err := database.Open(config.DBConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "users.db")})
	require.NoError(t, err)
	s := NewUserService(db)
	ctx := context.Background()

	u, err := s.RegisterUser(ctx, 42, "anna", "Anna", "")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	again, err := s.RegisterUser(ctx, 42, "anna_k", "Anna", "K")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	got, err := s.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "anna_k", got.Username)

	_, err = s.GetUserByTelegramID(ctx, 7)
	assert.Error(t, err)
}
