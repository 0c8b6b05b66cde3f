package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

func TestUserUseCase_CreateUser(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user, err := e.users.CreateUser(ctx, usecase.CreateUserInput{Username: "  user_one "})
	require.NoError(t, err)
	assert.Equal(t, "user_one", user.Username)
	assert.NotZero(t, user.ID)
	assert.Equal(t, testNow, user.CreatedAt)

	_, err = e.users.CreateUser(ctx, usecase.CreateUserInput{Username: "user_one"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	_, err = e.users.CreateUser(ctx, usecase.CreateUserInput{Username: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)

	got, err := e.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)

	_, err = e.users.GetUser(ctx, user.ID+1)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
