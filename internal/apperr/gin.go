package apperr

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Respond writes err as {"ok":false,"error","code","details"?}. Upstream,
// configuration and internal errors are logged with the request logger.
func Respond(c *gin.Context, err error) {
	e, ok := As(err)
	if !ok {
		e = Internal(err)
	}

	switch e.Kind {
	case KindUpstream, KindConfiguration, KindInternal:
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("kind", string(e.Kind)).
			Str("path", c.FullPath()).
			Msg("request failed")
	}

	body := gin.H{"ok": false, "error": e.Message, "code": string(e.Kind)}
	if e.Details != "" {
		body["details"] = e.Details
	}
	c.AbortWithStatusJSON(HTTPStatus(e.Kind), body)
}
