package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	mokjang "github.com/cydxin/mokjang-sdk"
	"github.com/cydxin/mokjang-sdk/middleware"
	"github.com/cydxin/mokjang-sdk/response"
)

// 把 SDK 嵌进已有的 gin 服务：内置路由 + 自己写的 controller 直接调 service
func main() {
	// 1. 初始化数据库连接
	dsn := "root:password@tcp(127.0.0.1:3306)/mokjang?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("数据库连接失败")
	}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	// 2. 初始化 Engine（token 存在 Redis，必须配置）
	engine := mokjang.NewEngine(
		mokjang.WithDB(db),
		mokjang.WithRDB(rdb),
		mokjang.WithServiceDebug(true),
	)
	defer engine.Close()

	// 3. 创建 Gin 路由
	r := gin.Default()
	mokjang.RegisterSwagger(r, "/swagger/*any")

	// 4. 内置接口：/api/v1/...，WS 地址 /api/v1/ws?token=xxx
	api := r.Group("/api/v1")
	engine.RegisterRoutes(api)

	// 5. 自定义接口：我所在小组里待认领的聚会数量
	custom := r.Group("/custom", engine.GinAuthMiddleware(nil))
	custom.GET("/unhosted/count", func(c *gin.Context) {
		uid, _ := middleware.CurrentUserID(c)
		groups, err := engine.GroupService.ListMyGroups(uid)
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		total := 0
		for _, g := range groups {
			list, err := engine.MeetingService.ListUnhosted(uid, g.ID, time.Now())
			if err != nil {
				c.JSON(http.StatusOK, response.FromError(err))
				return
			}
			total += len(list)
		}
		c.JSON(http.StatusOK, response.Success(gin.H{"count": total}))
	})

	// 6. 启动服务器
	log.Info().Msg("Swagger UI: http://localhost:8080/swagger/index.html")
	if err := r.Run(":8080"); err != nil {
		log.Fatal().Err(err).Msg("服务器启动失败")
	}
}
