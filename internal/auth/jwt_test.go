package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"cultureshare-api-io/api/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser() models.User {
	return models.User{
		ID:       primitive.NewObjectID(),
		Username: "alice",
		Email:    "alice@example.com",
		Role:     models.RoleUser,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("SECRET", "test-secret")

	user := testUser()
	token, expiresAt, err := GenerateJWT(user, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, time.Now().Unix())

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.Id)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, string(models.RoleUser), claims.Role)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	t.Setenv("SECRET", "test-secret")

	token, _, err := GenerateJWT(testUser(), -time.Minute)
	assert.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	t.Setenv("SECRET", "test-secret")
	token, _, err := GenerateJWT(testUser(), time.Hour)
	assert.NoError(t, err)

	t.Setenv("SECRET", "rotated-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		query    string
		header   string
		expected string
	}{
		{name: "bearer header", header: "Bearer abc123", expected: "abc123"},
		{name: "query param", query: "?token=xyz789", expected: "xyz789"},
		{name: "query wins over header", query: "?token=fromquery", header: "Bearer fromheader", expected: "fromquery"},
		{name: "malformed header", header: "abc123", expected: ""},
		{name: "nothing", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/resources"+tt.query, nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			assert.Equal(t, tt.expected, ExtractToken(c))
		})
	}
}

func TestCurrentPrincipalPrefersContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)

	stored := Principal{UserID: primitive.NewObjectID(), Username: "bob", Role: models.RoleAdmin}
	SetPrincipal(c, stored)

	p, err := CurrentPrincipal(c)
	assert.NoError(t, err)
	assert.Equal(t, stored, p)
	assert.True(t, p.IsAdmin())
}

func TestCurrentPrincipalWithoutTokenFails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)

	_, err := CurrentPrincipal(c)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestCurrentPrincipalIgnoresRawToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("SECRET", "test-secret")

	token, _, err := GenerateJWT(testUser(), time.Hour)
	assert.NoError(t, err)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	// A well-signed token alone is not an identity: the middleware owns the
	// blacklist and session checks, so only it may set the principal. A
	// logged-out token must not pass the owner/admin visibility checks on
	// ungated reads.
	_, err = CurrentPrincipal(c)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
