package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/moviepulse/internal/config"
	"github.com/user/moviepulse/internal/handler"
	"github.com/user/moviepulse/internal/middleware"
	"github.com/user/moviepulse/internal/repository"
	"github.com/user/moviepulse/internal/router"
	"github.com/user/moviepulse/internal/service"
	"github.com/user/moviepulse/internal/utils"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// 手动同步触发参数
	syncTrending := flag.Bool("sync-trending", false, "同步 trending 榜单后退出")
	syncGenres := flag.Bool("sync-genres", false, "同步全部类型榜单后退出")
	pages := flag.Int("pages", 0, "同步抓取页数（默认取 SYNC_PAGES）")
	syncWait := flag.Bool("sync-wait", false, "同步执行（阻塞等待完成），否则排队派发")
	flag.Parse()

	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()

	// 可选的轮转日志文件
	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // 天
		}))
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// 初始化仓库与服务
	repos := repository.NewRepositories(db)
	listingCache := utils.NewCache(15 * time.Minute)
	tmdb := service.NewTMDBClient(cfg, listingCache)
	queue := service.NewQueue(4, 64)
	syncSvc := service.NewSyncService(repos, tmdb, queue)
	querySvc := service.NewQueryService(repos, syncSvc, queue, cfg.SyncPages)
	searchSvc := service.NewSearchService(repos, tmdb, cfg)

	syncPages := cfg.SyncPages
	if *pages > 0 {
		syncPages = *pages
	}

	// CLI 模式：执行同步后退出，不启动服务器
	if *syncTrending || *syncGenres {
		runManualSync(queue, syncSvc, *syncTrending, *syncGenres, syncPages, *syncWait)
		queue.Stop()
		return
	}

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 加载模板（使用 multitemplate 解决继承问题）
	r.HTMLRender = router.LoadTemplates("./web/templates")

	// 静态文件
	r.Static("/static", "./web/static")

	// 中间件
	r.Use(middleware.Logger())
	r.Use(middleware.Security())
	r.Use(middleware.CORS())

	// 初始化 Handler 并注册路由
	h := handler.NewHandler(repos, cfg, querySvc, searchSvc, syncSvc, queue)
	router.RegisterRoutes(r, h)

	// 启动每日定时同步
	scheduler := service.NewScheduler(queue, syncSvc, cfg.SyncAt, cfg.SyncPages)
	scheduler.Start()

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.Printf("服务器启动于 http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	scheduler.Stop()
	queue.Stop()

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("服务器强制关闭:", err)
	}

	log.Println("服务器已退出")
}

// runManualSync 处理 CLI 同步触发
func runManualSync(queue *service.Queue, syncSvc *service.SyncService, trending, genres bool, pages int, wait bool) {
	submit := queue.Submit
	if wait {
		submit = queue.SubmitWait
	}

	if trending {
		log.Printf("手动触发 trending 同步 (%d 页)", pages)
		submit(syncSvc.TrendingJob(pages))
	}
	if genres {
		log.Printf("手动触发全量类型同步 (%d 页)", pages)
		submit(syncSvc.AllGenresJob(pages))
	}
}
