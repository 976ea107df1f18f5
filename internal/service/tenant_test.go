package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avorontsov/identity-service/internal/repo"
)

func newTenantService(t *testing.T) *TenantService {
	t.Helper()

	env := newAuthEnv(t)
	return &TenantService{Repo: env.rp}
}

func TestTenantService_CreateAndGet(t *testing.T) {
	svc := newTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, TenantInput{Name: "Acme", Address: "1 Main St"})
	require.NoError(t, err)
	require.NotZero(t, tenant.ID)

	found, err := svc.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Name)
	assert.Equal(t, "1 Main St", found.Address)
}

func TestTenantService_Create_Validation(t *testing.T) {
	svc := newTenantService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input TenantInput
	}{
		{name: "empty name", input: TenantInput{Name: "", Address: "addr"}},
		{name: "empty address", input: TenantInput{Name: "Acme", Address: ""}},
		{name: "name too long", input: TenantInput{Name: strings.Repeat("x", 101), Address: "addr"}},
		{name: "address too long", input: TenantInput{Name: "Acme", Address: strings.Repeat("x", 256)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTenantService_GetByID_NotFound(t *testing.T) {
	svc := newTenantService(t)

	_, err := svc.GetByID(context.Background(), 12345)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTenantService_UpdateAndDelete(t *testing.T) {
	svc := newTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, TenantInput{Name: "Acme", Address: "1 Main St"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, tenant.ID, TenantInput{Name: "Acme Corp", Address: "2 Side St"}))

	updated, err := svc.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)

	require.NoError(t, svc.Delete(ctx, tenant.ID))
	_, err = svc.GetByID(ctx, tenant.ID)
	require.Error(t, err)
}

func TestTenantService_List(t *testing.T) {
	svc := newTenantService(t)
	ctx := context.Background()

	for _, name := range []string{"Acme", "Globex", "Initech"} {
		_, err := svc.Create(ctx, TenantInput{Name: name, Address: "somewhere"})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, repo.ListTenantsParams{CurrentPage: 1, PerPage: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Data, 2)

	page, err = svc.List(ctx, repo.ListTenantsParams{Query: "glob", CurrentPage: 1, PerPage: 6})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Globex", page.Data[0].Name)
}
