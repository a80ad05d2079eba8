package router

import (
	"github.com/gin-gonic/gin"
	_ "github.com/invoicer/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// DocsPath is where Swagger UI and doc.json are served
const DocsPath = "/swagger/*any"

// RegisterDocs serves the generated OpenAPI document outside the versioned
// API, behind guards
func RegisterDocs(engine *gin.Engine, guards ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, guards...), ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET(DocsPath, handlers...)
}
