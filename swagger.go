package mokjang_sdk

import (
	"github.com/cydxin/mokjang-sdk/docs"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const defaultSwaggerPath = "/swagger/*any"

// RegisterSwagger 挂载 Swagger UI，r 可以是 *gin.Engine 或路由组。
// path 为空时使用 /swagger/*any，访问 /swagger/index.html。
func RegisterSwagger(r gin.IRoutes, path string) {
	if path == "" {
		path = defaultSwaggerPath
	}
	r.GET(path, ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.DocExpansion("none")))
}

// SetSwaggerHost 部署时覆盖文档里的 host（默认 localhost:6789）
func SetSwaggerHost(host string) {
	if host != "" {
		docs.SwaggerInfo.Host = host
	}
}
