// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity represents the authenticated KAM (key account manager).
// Token issuance lives in an external identity provider; this only surfaces
// the claims the pipeline needs for ownership stamping.
type Identity interface {
	// KamID returns the authenticated KAM's identifier.
	KamID() string
	// KamName returns the KAM's display name.
	KamName() string
	// Email returns the KAM's email address, if present in the token.
	Email() string
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	kamID         string
	kamName       string
	email         string
	authenticated bool
}

func (i *identity) KamID() string   { return i.kamID }
func (i *identity) KamName() string { return i.kamName }
func (i *identity) Email() string   { return i.email }
func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if claims are not present.
func GetIdentity(c *gin.Context) Identity {
	kamID, ok := c.Get(ContextKamIDKey)
	if !ok {
		return &identity{}
	}

	id, ok := kamID.(string)
	if !ok || id == "" {
		return &identity{}
	}

	name := c.GetString(ContextKamNameKey)
	email := c.GetString(ContextKamEmailKey)

	return &identity{
		kamID:         id,
		kamName:       name,
		email:         email,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context and aborts with
// 401 when the request is unauthenticated. Returns nil after aborting.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil
	}
	return id
}
