package controller

import (
	"approcciala/platform"

	"github.com/gin-gonic/gin"
)

type Router struct {
	Auth       *AuthController
	Dashboard  *DashboardController
	Chat       *ChatController
	Bucket     *platform.Bucket
	CORSOrigin string
}

func (r Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(CORSMiddleware(r.CORSOrigin))
	engine.Use(RequestIDMiddleware())
	engine.Use(LogMiddleware())

	engine.GET("/", Landing)
	if r.Bucket != nil {
		engine.Static(r.Bucket.PublicPrefix(), r.Bucket.Root())
	}

	v1 := engine.Group("/v1")
	{
		v1.POST("/auth/signup", r.Auth.SignUp)
		v1.POST("/auth/signin", r.Auth.SignIn)
		v1.POST("/auth/signout", r.Auth.SignOut)
		v1.GET("/auth/session", r.Auth.Session)

		//Refresh the token
		v1.POST("/token/refresh", r.Auth.Refresh)

		authed := v1.Group("", TokenAuthMiddleware(r.Auth))
		authed.GET("/dashboard", r.Dashboard.Show)
		authed.POST("/chats", r.Chat.Create)
		authed.GET("/chats/:id", r.Chat.Show)
		authed.POST("/chats/:id/messages", r.Chat.SendMessage)
		authed.GET("/chats/:id/images", r.Chat.Images)
		authed.POST("/chats/:id/images", r.Chat.UploadImages)
		authed.DELETE("/chats/:id/images/:index", r.Chat.RemoveImage)
	}

	return engine
}
