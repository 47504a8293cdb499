package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hrms-lite/internal/middleware"
	"github.com/noah-isme/hrms-lite/pkg/response"
)

func respond(c *gin.Context, status int, data interface{}) {
	response.JSON(c, status, data, middleware.ExtractMeta(c))
}
