package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JWTClaim struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated identity handed to every gated operation.
type Principal struct {
	UserID   primitive.ObjectID
	Username string
	Email    string
	Role     models.UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// GenerateJWT signs an access token for the user. Returns the token and its
// unix expiry.
func GenerateJWT(user models.User, ttl time.Duration) (string, int64, error) {
	expirationTime := time.Now().Add(ttl)
	jwtKey := util.LoadEnvFor("SECRET")

	claims := JWTClaim{
		Id:       user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(jwtKey))
	if err != nil {
		return "", 0, err
	}

	return tokenString, expirationTime.Unix(), nil
}

// ValidateToken parses and verifies a signed access token.
func ValidateToken(signedToken string) (*JWTClaim, error) {
	jwtKey := util.LoadEnvFor("SECRET")

	token, err := jwt.ParseWithClaims(signedToken, &JWTClaim{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaim)
	if !ok || !token.Valid {
		return nil, errors.New("couldn't parse token claims")
	}

	return claims, nil
}

// ExtractToken pulls the bearer token from the Authorization header, falling
// back to the token query param.
func ExtractToken(c *gin.Context) string {
	token := c.Query("token")
	if token != "" {
		return token
	}

	bearerToken := c.GetHeader("Authorization")
	if len(strings.Split(bearerToken, " ")) == 2 {
		return strings.Split(bearerToken, " ")[1]
	}

	return ""
}

// PrincipalFromToken resolves the request's authenticated identity.
func PrincipalFromToken(c *gin.Context) (Principal, error) {
	tokenString := ExtractToken(c)
	if tokenString == "" {
		return Principal{}, errors.Wrap(models.ErrUnauthorized, "request does not contain an access token")
	}

	claims, err := ValidateToken(tokenString)
	if err != nil {
		return Principal{}, errors.Wrap(models.ErrUnauthorized, err.Error())
	}

	userID, err := primitive.ObjectIDFromHex(claims.Id)
	if err != nil {
		return Principal{}, errors.Wrap(models.ErrUnauthorized, "malformed subject id")
	}

	return Principal{
		UserID:   userID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     models.UserRole(claims.Role),
	}, nil
}

// CurrentPrincipal reads the principal the auth middleware stored on the
// context. Only the middleware writes it, so a token that failed the
// blacklist or session checks never reaches this point as an identity.
func CurrentPrincipal(c *gin.Context) (Principal, error) {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(Principal); ok {
			return p, nil
		}
	}
	return Principal{}, errors.Wrap(models.ErrUnauthorized, "no authenticated principal on request")
}

const principalKey = "auth.principal"

// SetPrincipal stores the request identity for downstream handlers.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

func GenerateSecureToken(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return ""
	}

	return hex.EncodeToString(b)
}
