package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"go.uber.org/zap"
)

const (
	contextKey  = "identity.user"
	rejectedKey = "identity.rejected"
)

var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrNoSubject    = errors.New("token has no subject")
	ErrUnauthorized = errors.New("authentication required")
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier validates HS256 bearer tokens and yields their subject.
type Verifier struct {
	key []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{key: []byte(secret)}
}

// Verify parses a compact JWT, checks signature and time claims and returns
// the "sub" claim.
func (v *Verifier) Verify(raw string) (string, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256(), v.key),
		jwt.WithValidate(true))
	if err != nil {
		return "", err
	}
	sub, ok := token.Subject()
	if !ok || sub == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}

// Middleware resolves the caller from the Authorization header. A missing
// or unusable header leaves the request anonymous; Require decides whether
// that is acceptable.
func (v *Verifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.Set(rejectedKey, ErrNoToken)
			c.Next()
			return
		}
		user, err := v.Verify(raw)
		if err != nil {
			zap.L().Debug("identity_rejected", zap.Error(err))
			c.Set(rejectedKey, ErrInvalidToken)
			c.Next()
			return
		}
		c.Set(contextKey, user)
		c.Next()
	}
}

// Require aborts anonymous requests with 401.
func Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Get(rejectedKey); ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": v.(error).Error()})
			return
		}
		if _, ok := User(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

// User returns the authenticated caller, if any.
func User(c *gin.Context) (string, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
