package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/properties", handler.GetProperties)
		api.GET("/properties/opportunities", handler.GetOpportunities)
		api.GET("/properties/:id", handler.GetProperty)
		api.GET("/properties/:id/similar", handler.GetSimilar)
		api.GET("/predict", handler.PredictQuery)
		api.POST("/predict", handler.PredictBody)
		api.POST("/chat", handler.Chat)
		api.GET("/chat/health", handler.ChatHealth)

		tool := api.Group("/tools")
		{
			tool.POST("/mortgage", handler.MortgageTool)
			tool.POST("/roi", handler.ROITool)
			tool.POST("/compare", handler.CompareTool)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/stats", handler.AdminStats)
			admin.GET("/properties/search", handler.AdminSearch)
			admin.PUT("/properties/:id", handler.AdminUpdate)
			admin.DELETE("/properties/:id", handler.AdminDelete)
		}
	}
}
