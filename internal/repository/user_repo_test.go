package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/repository"
	"github.com/andy/tallysheet/internal/testutil"
)

func TestUserRepo(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewUserRepo(database)
	ctx := context.Background()

	u := domain.NewUser(" Someone@Example.com ")
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, "someone@example.com", u.Email)

	assert.ErrorIs(t, repo.Create(ctx, domain.NewUser("someone@example.com")), repository.ErrDuplicate)

	got, err := repo.GetByEmail(ctx, "someone@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, got.Tier)

	require.NoError(t, repo.UpdateTier(ctx, u.ID, domain.TierPro))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TierPro, got.Tier)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
