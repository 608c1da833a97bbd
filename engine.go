package mokjang_sdk

import (
	"github.com/cydxin/mokjang-sdk/middleware"
	"github.com/cydxin/mokjang-sdk/models"
	"github.com/cydxin/mokjang-sdk/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Engine struct {
	config *Config

	UserService         *service.UserService
	AuthService         *service.AuthService // 鉴权服务
	GroupService        *service.GroupService
	MeetingService      *service.MeetingService
	AnnouncementService *service.AnnouncementService
	CommentService      *service.CommentService
	PrayerService       *service.PrayerService
	PushTokenService    *service.PushTokenService
	NotificationService *service.NotificationService
	WsServer            *WsServer
}

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调。每次调用返回独立实例（测试里可并存多个）。
func NewEngine(opts ...Option) *Engine {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.Service.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	e := &Engine{config: c}

	// 初始化 WS
	e.WsServer = NewWsServer()
	go e.WsServer.Run()

	// 初始化基础 Service，注入 WsNotifier 回调
	baseService := &service.Service{
		DB:          c.DB,
		RDB:         c.RDB,
		TablePrefix: models.Prefix,
		WsNotifier:  e.WsServer.SendToUser, // 注入 WebSocket 通知函数
	}
	e.NotificationService = service.NewNotificationService(baseService)
	baseService.Notify = e.NotificationService

	// 初始化各个 Service
	e.UserService = service.NewUserService(baseService)
	e.AuthService = service.NewAuthService(c.RDB)
	e.GroupService = service.NewGroupService(baseService)
	e.MeetingService = service.NewMeetingService(baseService)
	e.AnnouncementService = service.NewAnnouncementService(baseService)
	e.PrayerService = service.NewPrayerService(baseService)
	e.CommentService = service.NewCommentService(baseService, e.PrayerService)
	e.PushTokenService = service.NewPushTokenService(baseService)

	// 迁移表
	if !c.SkipAutoMigrate && c.DB != nil {
		if err := e.AutoMigrate(); err != nil {
			log.Error().Err(err).Msg("AutoMigrate failed")
		}
	}

	e.bindWsHandlersOnMessage()
	return e
}

// Close 停止 WS hub
func (e *Engine) Close() {
	e.WsServer.Stop()
}

// GinAuthMiddleware 返回配置好的 Gin 鉴权中间件
// 使用 Engine 内部的 AuthService 和 Redis 配置
//
// 使用示例:
//
//	engine := mokjang_sdk.NewEngine(...)
//	r := gin.Default()
//	r.Use(engine.GinAuthMiddleware(nil)) // 使用默认配置
//	// 或自定义配置
//	r.Use(engine.GinAuthMiddleware(&middleware.AuthOptions{
//	    QueryKey: "access_token",
//	}))
func (e *Engine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	return middleware.GinAuthMiddleware(e.AuthService, opt)
}

// RegisterRoutes 注册全部 HTTP 接口到路由组（一般是 /api/v1）。
// 也可以不用这里的路由，自己写 controller 调用 service。
func (e *Engine) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/user/register", e.GinHandleUserRegister)
	g.POST("/user/login", e.GinHandleUserLogin)

	auth := g.Group("", e.GinAuthMiddleware(nil))
	auth.GET("/ws", e.GinHandleWS)

	auth.GET("/user/info", e.GinHandleGetUserInfo)
	auth.POST("/user/update", e.GinHandleUpdateProfile)
	auth.POST("/user/password", e.GinHandleUpdatePassword)
	auth.POST("/user/logout", e.GinHandleLogout)

	auth.POST("/group/create", e.GinHandleCreateGroup)
	auth.GET("/group/info", e.GinHandleGetGroup)
	auth.GET("/group/list", e.GinHandleListGroups)
	auth.GET("/group/mine", e.GinHandleListMyGroups)
	auth.GET("/group/member/list", e.GinHandleListMembers)
	auth.POST("/group/update", e.GinHandleUpdateGroup)
	auth.POST("/group/leave", e.GinHandleLeaveGroup)
	auth.POST("/group/join/request", e.GinHandleRequestJoin)
	auth.POST("/group/join/approve", e.GinHandleApproveJoin)
	auth.POST("/group/join/reject", e.GinHandleRejectJoin)
	auth.GET("/group/join/pending", e.GinHandleListPendingRequests)

	auth.POST("/meeting/create", e.GinHandleCreateMeeting)
	auth.POST("/meeting/volunteer", e.GinHandleVolunteer)
	auth.GET("/meeting/list", e.GinHandleListMeetings)
	auth.GET("/meeting/unhosted", e.GinHandleListUnhosted)
	auth.POST("/meeting/update", e.GinHandleUpdateMeeting)
	auth.POST("/meeting/delete", e.GinHandleDeleteMeeting)

	auth.POST("/announcement/create", e.GinHandleCreateAnnouncement)
	auth.GET("/announcement/list", e.GinHandleListAnnouncements)
	auth.GET("/announcement/detail", e.GinHandleGetAnnouncement)
	auth.POST("/announcement/read", e.GinHandleMarkAnnouncementRead)
	auth.POST("/announcement/delete", e.GinHandleDeleteAnnouncement)

	auth.POST("/comment/create", e.GinHandleAddComment)
	auth.GET("/comment/list", e.GinHandleListComments)
	auth.POST("/comment/delete", e.GinHandleDeleteComment)

	auth.POST("/prayer/create", e.GinHandleCreatePrayer)
	auth.GET("/prayer/list", e.GinHandleListPrayers)
	auth.POST("/prayer/answered", e.GinHandleSetPrayerAnswered)
	auth.POST("/prayer/delete", e.GinHandleDeletePrayer)

	auth.POST("/push/register", e.GinHandleRegisterPushToken)
	auth.POST("/push/unregister", e.GinHandleUnregisterPushToken)

	auth.GET("/notification/list", e.GinHandleListNotifications)
	auth.POST("/notification/read", e.GinHandleMarkNotificationsRead)
}
