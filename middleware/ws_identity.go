// middleware/ws_identity.go
package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const (
	UserIDLocal   = "user_id"
	UserNameLocal = "user_name"
)

// WSIdentity extracts the already-authenticated identity the Gateway attaches
// to realtime connections: X-User-ID and X-User-Name headers, with query
// params (user_id, user_name) as a fallback for direct clients. The values
// are stashed in Locals for the websocket handler; the handler itself rejects
// absent identity post-upgrade, so the client receives a proper error event
// instead of a bare HTTP status.
func WSIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawID := strings.TrimSpace(c.Get("X-User-ID"))
		name := strings.TrimSpace(c.Get("X-User-Name"))
		if rawID == "" {
			rawID = strings.TrimSpace(c.Query("user_id"))
		}
		if name == "" {
			name = strings.TrimSpace(c.Query("user_name"))
		}

		var userID uint
		if rawID != "" {
			parsed, err := strconv.ParseUint(rawID, 10, 64)
			if err != nil {
				log.Warnf("[WS_IDENTITY] non-numeric user id %q from %s", rawID, c.IP())
			} else {
				userID = uint(parsed)
			}
		}

		c.Locals(UserIDLocal, userID)
		c.Locals(UserNameLocal, name)
		return c.Next()
	}
}
