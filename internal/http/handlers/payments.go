package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PayFastNotify handles the gateway's server-to-server ITN callback.
// POST /api/payments/payfast/notify
//
// Duplicate and out-of-order deliveries return 200 as no-ops; a failed
// signature check is rejected so the payload is never acted on.
func PayFastNotify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		RespondError(c, http.StatusBadRequest, "could not parse form", err)
		return
	}

	post := make(map[string]string, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			post[k] = v[0]
		}
	}

	svc := bookingService(c)
	result, err := svc.HandleGatewayNotification(post)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
