package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine: public reads, token-gated mutations,
// /metrics and /ping.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/login", h.Login)

		api.GET("/dashboard", h.Dashboard)
		api.GET("/students", h.ListStudents)
		api.GET("/students/:id", h.GetStudent)
		api.GET("/students/:id/ledger", h.Ledger)
		api.POST("/students/:id/select", h.SelectStudent)
		api.GET("/selection", h.SelectedStudent)
		api.GET("/transactions", h.Transactions)
		api.GET("/team", h.ListTeam)
		api.GET("/batches", h.ListBatches)
		api.GET("/settings/profile-picture", h.GetProfilePicture)
		api.GET("/sync/status", h.SyncStatus)
		api.GET("/sync/auth-url", h.SyncAuthURL)
	}

	admin := api.Group("", RequireAuth(h.jwt))
	{
		admin.POST("/students", h.EnrollStudent)
		admin.PUT("/students/:id", h.UpdateStudent)
		admin.POST("/students/import", h.ImportStudents)
		admin.POST("/students/:id/payments", h.RecordPayment)
		admin.POST("/students/:id/payments/batch", h.RecordPaymentBatch)

		admin.POST("/team", h.AddTeamMember)
		admin.DELETE("/team/:id", h.RemoveTeamMember)
		admin.POST("/batches", h.AddBatch)
		admin.DELETE("/batches/:name", h.RemoveBatch)
		admin.PUT("/settings/profile-picture", h.SetProfilePicture)

		admin.POST("/sync/connect", h.SyncConnect)
		admin.POST("/sync/disconnect", h.SyncDisconnect)
		admin.POST("/sync/now", h.SyncNow)
	}

	return r
}
