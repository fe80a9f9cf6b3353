package context_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "github.com/Ramsey-B/vine/pkg/context"
)

func TestTenantID(t *testing.T) {
	t.Run("unset tenant reads as empty", func(t *testing.T) {
		assert.Equal(t, "", appctx.GetTenantID(context.Background()))
	})

	t.Run("set and get", func(t *testing.T) {
		ctx := appctx.SetTenantID(context.Background(), "tenant-a")
		assert.Equal(t, "tenant-a", appctx.GetTenantID(ctx))
	})

	t.Run("set replaces prior tenant", func(t *testing.T) {
		ctx := appctx.SetTenantID(context.Background(), "tenant-a")
		ctx = appctx.SetTenantID(ctx, "tenant-b")
		assert.Equal(t, "tenant-b", appctx.GetTenantID(ctx))
	})

	t.Run("clear removes tenant", func(t *testing.T) {
		ctx := appctx.SetTenantID(context.Background(), "tenant-a")
		cleared := appctx.ClearTenantID(ctx)
		assert.Equal(t, "", appctx.GetTenantID(cleared))
		// the original context is untouched
		assert.Equal(t, "tenant-a", appctx.GetTenantID(ctx))
	})
}

func TestRunWithTenant(t *testing.T) {
	t.Run("fn sees the tenant", func(t *testing.T) {
		var seen string
		err := appctx.RunWithTenant(context.Background(), "tenant-a", func(ctx context.Context) error {
			seen = appctx.GetTenantID(ctx)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "tenant-a", seen)
	})

	t.Run("caller context keeps its tenant afterwards", func(t *testing.T) {
		ctx := appctx.SetTenantID(context.Background(), "tenant-outer")
		err := appctx.RunWithTenant(ctx, "tenant-inner", func(inner context.Context) error {
			assert.Equal(t, "tenant-inner", appctx.GetTenantID(inner))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "tenant-outer", appctx.GetTenantID(ctx))
	})

	t.Run("caller context intact when fn fails", func(t *testing.T) {
		ctx := appctx.SetTenantID(context.Background(), "tenant-outer")
		wantErr := errors.New("boom")
		err := appctx.RunWithTenant(ctx, "tenant-inner", func(inner context.Context) error {
			return wantErr
		})
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, "tenant-outer", appctx.GetTenantID(ctx))
	})

	t.Run("nested scopes restore outward", func(t *testing.T) {
		err := appctx.RunWithTenant(context.Background(), "tenant-a", func(a context.Context) error {
			return appctx.RunWithTenant(a, "tenant-b", func(b context.Context) error {
				assert.Equal(t, "tenant-b", appctx.GetTenantID(b))
				assert.Equal(t, "tenant-a", appctx.GetTenantID(a))
				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("concurrent scopes never observe each other", func(t *testing.T) {
		base := context.Background()
		done := make(chan string, 2)
		for _, id := range []string{"tenant-a", "tenant-b"} {
			go func(tenantID string) {
				_ = appctx.RunWithTenant(base, tenantID, func(ctx context.Context) error {
					done <- appctx.GetTenantID(ctx)
					return nil
				})
			}(id)
		}
		got := map[string]bool{<-done: true, <-done: true}
		assert.True(t, got["tenant-a"])
		assert.True(t, got["tenant-b"])
		assert.Equal(t, "", appctx.GetTenantID(base))
	})
}

func TestRequestMetadata(t *testing.T) {
	ctx := context.Background()
	ctx = appctx.SetRequestID(ctx, "req-1")
	ctx = appctx.SetUserID(ctx, "user-1")
	ctx = appctx.SetMethod(ctx, "GET")
	ctx = appctx.SetRoute(ctx, "/suppliers")
	ctx = appctx.SetRemoteIP(ctx, "10.0.0.1")
	ctx = appctx.SetReferer(ctx, "https://example.com")

	assert.Equal(t, "req-1", appctx.GetRequestID(ctx))
	assert.Equal(t, "user-1", appctx.GetUserID(ctx))
	assert.Equal(t, "GET", appctx.GetMethod(ctx))
	assert.Equal(t, "/suppliers", appctx.GetRoute(ctx))
	assert.Equal(t, "10.0.0.1", appctx.GetRemoteIP(ctx))
	assert.Equal(t, "https://example.com", appctx.GetReferer(ctx))
}
