package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildCookie(t *testing.T) {
	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cookie := buildCookie("tok-123", expires)

	assert.Equal(t, cookieName, cookie.Name)
	assert.Equal(t, "tok-123", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, expires, cookie.Expires)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestFromContext_MissingValue(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

func TestFromContext_RoundTrip(t *testing.T) {
	ctx := context.WithValue(context.Background(), sessionContextKey, "tok-456")
	token, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok-456", token)
}
