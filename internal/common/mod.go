package common

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var Validate = validator.New()

const (
	REQUEST_TIMEOUT_SECS     = 30 * time.Second
	MONGO_DUPLICATE_KEY_CODE = 11000

	// Outbound link probes; see the link health checker.
	LINK_CHECK_TIMEOUT     = 8 * time.Second
	LINK_CHECK_CONCURRENCY = 8

	// A full sweep probes every approved resource; give it room.
	BATCH_CHECK_TIMEOUT = 10 * time.Minute

	TOKEN_TTL = 24 * time.Hour

	DEFAULT_USER_AVATAR = "https://res.cloudinary.com/cultureshare/image/upload/v1705607383/avatars/default.png"
)

// IsEmptyString checks if a string is empty
func IsEmptyString(s string) bool {
	return strings.TrimSpace(s) == ""
}
