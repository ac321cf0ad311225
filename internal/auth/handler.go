package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bootstrapPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="referrer" content="no-referrer" />
    <title>Luban</title>
  </head>
  <body>
    <script>
      window.history.replaceState(null, "", "/");
      window.location.replace("/");
    </script>
  </body>
</html>
`

// HandleBootstrap implements GET /auth?token=<bootstrap>. It answers 404
// when auth is disabled (there is nothing to bootstrap) and 401 when the
// token does not match.
func (s *State) HandleBootstrap(c *gin.Context) {
	if !s.enabled {
		c.Status(http.StatusNotFound)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if !s.ConsumeBootstrapToken(token) {
		c.Status(http.StatusUnauthorized)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, token, 0, "/", "", false, true)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(bootstrapPage))
}

// SetupRoutes registers the bootstrap route on router.
func (s *State) SetupRoutes(router gin.IRouter) {
	router.GET("/auth", s.HandleBootstrap)
}
