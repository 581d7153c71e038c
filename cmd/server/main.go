package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/api"
	"github.com/PiGomoku/pi-gomoku-backend/internal/payment"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/backup"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/config"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/database"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/health"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/shutdown"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/startup"
	"github.com/PiGomoku/pi-gomoku-backend/internal/reset"
	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
	"github.com/PiGomoku/pi-gomoku-backend/pkg/lifecycle"
	"github.com/PiGomoku/pi-gomoku-backend/pkg/pinet"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env不存在不是错误，生产环境直接用环境变量
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Redis)

	// 1. 创建内存仓库并注入Pi平台客户端
	startingScore := cfg.Reset.StartingScore
	if startingScore <= 0 {
		startingScore = 100
	}
	user.InitializeRepository(startingScore)
	piClient := pinet.NewClient(cfg.Pi.APIKey, cfg.Pi.AppID)
	user.InitializeService(piClient)
	payment.InitializeService(piClient)

	// 2. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 3. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 4. 启动后台调度器，分两个生命周期组管理
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	backupHandle, err := gracefulMgr.NewServiceHandle("快照调度器")
	if err != nil {
		panic(err)
	}
	resetHandle, err := gracefulMgr.NewServiceHandle("月度重置调度器")
	if err != nil {
		panic(err)
	}
	healthHandle, err := forcefulMgr.NewServiceHandle("Redis健康检查器")
	if err != nil {
		panic(err)
	}

	go backup.StartBackupScheduler(backupHandle)
	go reset.StartScheduler(resetHandle)
	go health.StartRedisHealthCheck(healthHandle)

	// 5. 配置Gin引擎
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.Default()

	allowOrigins := cfg.Server.Cors.AllowedOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Admin-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	// 6. 启动HTTP服务器并等待停机信号
	address := cfg.Server.Address
	if address == "" {
		address = ":8080"
	}
	server := &http.Server{
		Addr:    address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}
