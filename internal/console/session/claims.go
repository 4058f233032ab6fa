// Package session persists the logged-in user's credential and decodes the
// user profile carried in it.
package session

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

var ErrMalformedToken = errors.New("malformed access token")

// Claim names as issued by the auth server, which uses the ASP.NET identity
// URIs for some of them.
const (
	claimRoleURI = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	claimNameURI = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	claimIDURI   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimMailURI = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
)

// DecodeToken reads the user profile from an access token. The signature is
// not checked: the API verifies every request, the console only needs the
// claims for display and routing.
func DecodeToken(token string) (entity.UserInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return entity.UserInfo{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return entity.UserInfo{}, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}

	info := entity.UserInfo{
		Email: firstString(claims, "email", claimMailURI),
		Name:  firstString(claims, "name", "unique_name", claimNameURI),
		Role:  firstString(claims, "role", claimRoleURI),
		Exp:   exp.Unix(),
	}
	if info.Role == "" {
		return entity.UserInfo{}, fmt.Errorf("%w: missing role claim", ErrMalformedToken)
	}
	if id := firstString(claims, "id", "nameid", claimIDURI, "sub"); id != "" {
		if info.ID, err = strconv.ParseInt(id, 10, 64); err != nil {
			return entity.UserInfo{}, fmt.Errorf("%w: non-numeric user id %q", ErrMalformedToken, id)
		}
	}
	return info, nil
}

func firstString(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		case []any:
			// multi-role tokens: the first role decides the console
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}
