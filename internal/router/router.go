package router

import (
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/moviepulse/internal/handler"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 页面 ====================
	r.GET("/", h.Home)
	r.GET("/genres/:id", h.GenrePage)
	r.GET("/search", h.SearchPage)

	// ==================== 点击与聚合 ====================
	r.POST("/clicks", h.RecordClick)
	r.GET("/recent-views", h.RecentViews)
	r.GET("/heatmap-data", h.HeatmapData)

	// ==================== JSON API ====================
	api := r.Group("/api")
	{
		api.GET("/genres", h.GenresJSON)
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	// 模板函数
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}

	pages := []string{"home", "genre", "search", "error", "404"}
	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	// 单独注册给 htmx 局部更新用的片段
	r.AddFromFiles("recent_views.html", templatesDir+"/partials/recent_views.html")

	return r
}
