package httpapi

import (
	"github.com/gin-gonic/gin"

	"voicera-console/internal/rbac"
)

// BasePath prefixes every console route.
const BasePath = "/console/v1"

// Register mounts the console API. The account routes and the catalog are
// public; everything else needs a session with an org.
func (h *Handlers) Register(r gin.IRouter) {
	v1 := r.Group(BasePath)

	v1.POST("/session", h.Login)
	v1.POST("/signup", h.Signup)
	v1.POST("/password/forgot", h.ForgotPassword)
	v1.POST("/password/reset", h.ResetPassword)

	catalog := v1.Group("/catalog")
	{
		catalog.GET("/languages", h.Languages)
		catalog.GET("/providers", h.Providers)
		catalog.GET("/voice-descriptions", h.VoiceDescriptions)
	}

	authed := v1.Group("")
	authed.Use(h.Sessions.RequireSession(), rbac.RequireOrg())
	{
		authed.GET("/session", h.Me)
		authed.DELETE("/session", h.Logout)
		authed.GET("/dashboard", h.Dashboard)

		form := authed.Group("/form")
		form.POST("/resolve", h.ResolveForm)
		form.POST("/wizard", h.Wizard)

		agents := authed.Group("/agents")
		agents.GET("", h.ListAgents)
		agents.POST("", h.CreateAgent)
		agents.GET("/:name", h.GetAgent)
		agents.POST("/:name/preview", h.PreviewAgent)
		agents.PUT("/:name", h.SaveAgent)
		agents.DELETE("/:name", h.DeleteAgent)
		agents.POST("/:name/test-call", h.TestCall)

		numbers := authed.Group("/numbers")
		numbers.GET("", h.ListNumbers)
		numbers.GET("/candidates", h.NumberCandidates)
		numbers.POST("/attach", h.AttachNumber)
		numbers.POST("/detach", h.DetachNumber)

		history := authed.Group("/history")
		history.GET("", h.ListHistory)
		history.GET("/options", h.HistoryOptions)
		history.GET("/export", h.ExportHistory)
		history.GET("/:id", h.GetMeeting)
		history.GET("/:id/recording", h.Recording)

		authed.GET("/analytics", h.Analytics)

		members := authed.Group("/members")
		members.GET("", h.ListMembers)
		members.POST("", h.AddMember)
		members.DELETE("/:email", h.DeleteMember)

		campaigns := authed.Group("/campaigns")
		campaigns.GET("", h.ListCampaigns)
		campaigns.POST("", h.CreateCampaign)
		campaigns.GET("/:name", h.GetCampaign)

		audiences := authed.Group("/audiences")
		audiences.GET("", h.ListAudiences)
		audiences.POST("", h.CreateAudience)
		audiences.GET("/:name", h.GetAudience)

		integrations := authed.Group("/integrations")
		integrations.GET("", h.ListIntegrations)
		integrations.PUT("/:model", h.SaveIntegration)
		integrations.DELETE("/:model", h.DeleteIntegration)

		authed.GET("/audit", h.RecentAudit)
	}
}
