package http

import (
	"net/http"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var statusByKind = map[domain.ErrorKind]int{
	domain.KindAuthentication: http.StatusUnauthorized,
	domain.KindAuthorization:  http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindConflict:       http.StatusConflict,
}

func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error", "kind": kind.String()})
		return
	}
	c.JSON(status, gin.H{"message": err.Error(), "kind": kind.String()})
}
