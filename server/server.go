package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"AuthQ/config"
	"AuthQ/db"
	"AuthQ/logger"
	"AuthQ/mq"
	"AuthQ/repository"
	"AuthQ/storage"

	"github.com/gorilla/mux"
)

// newRouter 注册中间件与路由组。拆出来方便测试直接挂临时 handler。
func newRouter(h *APIHandler, cfgProvider func() *config.Config) http.Handler {
	router := mux.NewRouter()

	router.Use(loggingMiddleware)
	router.Use(recoverMiddleware)

	api := router.PathPrefix(cfgProvider().APIPrefix).Subrouter()

	// 身份认证
	authGroup := api.PathPrefix("/auth").Subrouter()
	authGroup.HandleFunc("/act/user/login", wrap(h.LoginHandler)).Methods(http.MethodPost)
	authGroup.HandleFunc("/act/user/register", wrap(h.RegisterHandler)).Methods(http.MethodPost)

	// 用户资料与关注关系
	userGroup := api.PathPrefix("/user").Subrouter()
	userGroup.HandleFunc("/profile", wrap(h.requireAuth(h.ProfileHandler))).Methods(http.MethodGet)
	userGroup.HandleFunc("/follow/{uuid}", wrap(h.requireAuth(h.FollowHandler))).Methods(http.MethodPost)
	userGroup.HandleFunc("/follow/{uuid}", wrap(h.requireAuth(h.UnfollowHandler))).Methods(http.MethodDelete)
	userGroup.HandleFunc("/followers", wrap(h.requireAuth(h.FollowersHandler))).Methods(http.MethodGet)
	userGroup.HandleFunc("/following", wrap(h.requireAuth(h.FollowingHandler))).Methods(http.MethodGet)
	userGroup.HandleFunc("/avatar", wrap(h.requireAuth(h.AvatarHandler))).Methods(http.MethodPost)

	// mux 的 Use 只在路由匹配后执行，预检 OPTIONS 不命中任何已注册方法，
	// CORS 必须包在路由器外层才能应答预检
	return corsMiddleware(cfgProvider)(router)
}

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
		Compress:   true,
	})

	// 配置热更新：liveCfg 持有当前生效的配置
	var liveCfg atomic.Pointer[config.Config]
	liveCfg.Store(cfg)
	cfgProvider := liveCfg.Load

	stopWatch, err := config.Watch(".env", func() {
		liveCfg.Store(config.Reload())
		logger.Info("配置已重新加载")
	})
	if err != nil {
		logger.Warn("配置热更新不可用", logger.ErrorField(err))
	} else {
		defer stopWatch()
	}

	// 数据库连接与幂等建表
	gdb, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("数据库连接失败", logger.ErrorField(err))
	}
	defer db.Close(gdb)

	if err := db.InitSchema(gdb); err != nil {
		logger.Fatal("数据库初始化失败", logger.ErrorField(err))
	}
	logger.Info("数据库初始化完成")

	// 缓存连接池随进程启动建立、关闭释放
	rdb, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("Redis连接失败", logger.ErrorField(err))
	}
	defer rdb.Close()
	logger.Info("Redis连接成功")

	tokens := db.NewTokenCache(rdb, cfg.TokenExpire())

	// 短信任务队列。broker 不可用时降级：注册流程跳过短信，不影响登录
	var smsPublisher SMSPublisher
	mqConn, err := mq.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Warn("RabbitMQ不可用，短信任务投递已停用", logger.ErrorField(err))
	} else {
		defer mqConn.Close()
		publisher, err := mq.NewPublisher(mqConn)
		if err != nil {
			logger.Warn("短信任务发布器创建失败", logger.ErrorField(err))
		} else {
			defer publisher.Close()
			smsPublisher = publisher
		}
	}

	// 头像对象存储，未配置时对应端点返回参数错误
	var avatars AvatarStore
	if cfg.MinioEndpoint != "" {
		store, err := storage.NewAvatarStore(cfg)
		if err != nil {
			logger.Fatal("MinIO初始化失败", logger.ErrorField(err))
		}
		avatars = store
		logger.Info("MinIO初始化成功")
	}

	userRepo := repository.NewGormUserRepository(gdb)
	apiHandler := NewAPIHandler(gdb, userRepo, tokens, smsPublisher, avatars, cfgProvider)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      newRouter(apiHandler, cfgProvider),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("服务器启动",
			logger.String("addr", cfg.ServerAddr),
			logger.String("prefix", cfg.APIPrefix))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("服务器强制关闭", logger.ErrorField(err))
	}

	logger.Info("服务器已停止")
}
