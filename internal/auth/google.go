package auth

import (
	"cultureshare-api-io/api/pkg/util"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/pkg/errors"
)

// VerifyGoogleIDToken checks a Google sign-in token against our client id and
// returns its claims.
func VerifyGoogleIDToken(idToken string) (*googleAuthIDTokenVerifier.ClaimSet, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	googleClientID := util.LoadEnvFor("GOOGLE_CLIENT_ID")
	if err := v.VerifyIDToken(idToken, []string{googleClientID}); err != nil {
		return nil, err
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, errors.New("cannot decode token")
	}

	return claimSet, nil
}
