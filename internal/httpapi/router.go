package httpapi

import (
	"net/http"

	"github.com/affectlab/affectchat/internal/common"
	"github.com/affectlab/affectchat/internal/httpapi/handlers"
	"github.com/affectlab/affectchat/internal/httpapi/middleware"
	"github.com/affectlab/affectchat/internal/policy"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter mounts one identical route set per policy variant; the variant
// itself is the only thing that differs, closed over from the registry.
func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	r.Use(cors.New(corsCfg))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", func(c *gin.Context) {
		common.OK(c, gin.H{"pong": true})
	})

	for _, v := range policy.Variants() {
		g := r.Group("/" + v.Route())
		g.POST("/respond", h.Respond(v))
		g.POST("/respond/async", h.RespondAsync(v))
		g.POST("/analyze", h.Analyze(v))
	}

	r.GET("/jobs/:job_id", h.GetTurnJob)

	admin := r.Group("/admin")
	admin.POST("/login", h.AdminLogin)

	gated := admin.Group("/")
	gated.Use(middleware.AdminRequired(h.Cfg.JWTSecret))
	gated.GET("/conversations", h.ListConversations)
	gated.DELETE("/conversations/:id", h.DeleteConversation)
	gated.GET("/messages/:id", h.ListConversationMessages)
	gated.GET("/export/:id", h.ExportConversation)
	gated.GET("/export-all", h.ExportAll)

	return r
}
