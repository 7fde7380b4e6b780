// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"

	"canvas-ai-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	canvasHandler *handler.CanvasHandler,
	chatHandler *handler.ChatHandler,
	generationHandler *handler.GenerationHandler,
) {
	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.POST("/logout", authHandler.Logout)
	}

	// 用户管理
	users := v1.Group("/users")
	{
		users.GET("/me", userHandler.GetMe)
		users.PUT("/me", userHandler.UpdateMe)
		users.PUT("/me/password", userHandler.ChangePassword)
		users.GET("/me/credits", userHandler.GetCredits)
	}

	// 画布管理
	canvases := v1.Group("/canvases")
	{
		canvases.GET("", canvasHandler.ListCanvases)
		canvases.POST("", canvasHandler.CreateCanvas)
		canvases.GET("/:cid", canvasHandler.GetCanvas)
		canvases.PUT("/:cid", canvasHandler.SaveCanvasData)
		canvases.PUT("/:cid/name", canvasHandler.RenameCanvas)
		canvases.DELETE("/:cid", canvasHandler.DeleteCanvas)

		// 画布下的元素与会话
		canvases.GET("/:cid/elements", canvasHandler.ListElements)
		canvases.GET("/:cid/sessions", chatHandler.ListSessions)
	}

	// 会话管理
	sessions := v1.Group("/sessions")
	{
		sessions.POST("", chatHandler.CreateSession)
		sessions.GET("/:sid/messages", chatHandler.ListMessages)
		sessions.POST("/:sid/messages", chatHandler.AppendMessage)
	}

	// 图像生成
	images := v1.Group("/images")
	{
		images.POST("/generate", generationHandler.GenerateImage)
	}
}
