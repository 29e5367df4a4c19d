package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/msu-tj/schedule-desk-api/internal/service"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
	"github.com/msu-tj/schedule-desk-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the request token source.
const ContextSessionKey = "session"

// RefreshTokenHeader carries the caller's refresh token so this side can
// recover from upstream 401s mid-request.
const RefreshTokenHeader = "X-Refresh-Token"

// RotatedTokenHeader returns a refreshed access token to the caller. Clients
// swap their stored token whenever the header is present.
const RotatedTokenHeader = "X-Access-Token"

// Session requires a bearer token, decodes it, and attaches a per-request
// token source. After the handler runs, any token rotation that happened
// while talking upstream is surfaced in the response headers.
func Session(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		session, err := sessions.NewSession(parts[1], c.GetHeader(RefreshTokenHeader))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		ts := sessions.TokenSource(session)
		c.Set(ContextSessionKey, ts)
		c.Writer = &rotatedTokenWriter{ResponseWriter: c.Writer, ts: ts}
		c.Next()
	}
}

// rotatedTokenWriter injects the refreshed access token into the response
// headers just before they flush, since rotation is only known once the
// handler has talked upstream.
type rotatedTokenWriter struct {
	gin.ResponseWriter
	ts *service.RequestTokenSource
}

func (w *rotatedTokenWriter) WriteHeader(code int) {
	if rotated := w.ts.RotatedToken(); rotated != "" {
		w.Header().Set(RotatedTokenHeader, rotated)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *rotatedTokenWriter) Write(data []byte) (int, error) {
	if !w.Written() {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// TokenSourceFrom extracts the request token source set by Session.
func TokenSourceFrom(c *gin.Context) (*service.RequestTokenSource, bool) {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	ts, ok := value.(*service.RequestTokenSource)
	return ts, ok
}
