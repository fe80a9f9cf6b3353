// Package context carries request-scoped metadata, including the tenant and
// user identity that every data access is scoped by.
package context

import "context"

type ContextKey string

const (
	RequestIDKey = ContextKey("X-Request-Id")
	MethodKey    = ContextKey("X-Method")
	RouteKey     = ContextKey("X-Route")
	RemoteIPKey  = ContextKey("X-Remote-Ip")
	RefererKey   = ContextKey("X-Referer")
	TenantIDKey  = ContextKey("X-Tenant-Id")
	UserIDKey    = ContextKey("X-User-Id")
)

// value reads the string stored under key, "" when absent.
func value(ctx context.Context, key ContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string { return value(ctx, RequestIDKey) }

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) string { return value(ctx, UserIDKey) }

func SetMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, MethodKey, method)
}

func GetMethod(ctx context.Context) string { return value(ctx, MethodKey) }

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, RouteKey, route)
}

func GetRoute(ctx context.Context) string { return value(ctx, RouteKey) }

func SetRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return context.WithValue(ctx, RemoteIPKey, remoteIP)
}

func GetRemoteIP(ctx context.Context) string { return value(ctx, RemoteIPKey) }

func SetReferer(ctx context.Context, referer string) context.Context {
	return context.WithValue(ctx, RefererKey, referer)
}

func GetReferer(ctx context.Context) string { return value(ctx, RefererKey) }

func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

func GetTenantID(ctx context.Context) string { return value(ctx, TenantIDKey) }

// ClearTenantID removes the active tenant from the returned context. Contexts
// derived earlier keep whatever tenant they carried.
func ClearTenantID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TenantIDKey, "")
}

// RunWithTenant runs fn with tenantID set on a child context. The caller's
// context is never mutated, so its tenant is intact on every exit path,
// including when fn returns an error.
func RunWithTenant(ctx context.Context, tenantID string, fn func(ctx context.Context) error) error {
	return fn(SetTenantID(ctx, tenantID))
}
