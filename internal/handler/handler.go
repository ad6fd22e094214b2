package handler

import (
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/user/moviepulse/internal/config"
	"github.com/user/moviepulse/internal/model"
	"github.com/user/moviepulse/internal/repository"
	"github.com/user/moviepulse/internal/service"
)

// Handler HTTP 处理器
type Handler struct {
	Repos  *repository.Repositories
	Config *config.Config
	Query  *service.QueryService
	Search *service.SearchService
	Sync   *service.SyncService
	Queue  *service.Queue
}

// NewHandler 创建处理器
func NewHandler(
	repos *repository.Repositories,
	cfg *config.Config,
	querySvc *service.QueryService,
	searchSvc *service.SearchService,
	syncSvc *service.SyncService,
	queue *service.Queue,
) *Handler {
	return &Handler{
		Repos:  repos,
		Config: cfg,
		Query:  querySvc,
		Search: searchSvc,
		Sync:   syncSvc,
		Queue:  queue,
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"SiteUrl":  h.Config.SiteUrl,
		"Path":     c.Request.URL.Path,
	}
	for k, v := range data {
		res[k] = v
	}
	return res
}

// Home 首页：trending 第一页 + 类型入口 + 最近浏览侧栏
func (h *Handler) Home(c *gin.Context) {
	// 当天快照缺失时触发异步回填，本次请求照常返回兜底数据
	h.Query.EnsureTrendingAvailable()

	movies, err := h.Query.GetTrendingPage(time.Now(), model.ListTypeTrendingDay, 1)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", h.RenderData(c, gin.H{
			"Title":   "出错了",
			"Message": "加载榜单失败",
		}))
		return
	}

	genres, _ := h.Repos.Genre.List()
	recent, _ := h.Repos.Click.RecentViews(10)

	c.HTML(http.StatusOK, "home.html", h.RenderData(c, gin.H{
		"Title":  h.Config.SiteName + " - 电影热度榜",
		"Movies": movies,
		"Genres": genres,
		"Recent": recent,
	}))
}

// GenrePage 类型榜单页
func (h *Handler) GenrePage(c *gin.Context) {
	tmdbID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderNotFound(c)
		return
	}

	genre, err := h.Repos.Genre.FindByTmdbID(tmdbID)
	if err != nil || genre == nil {
		h.renderNotFound(c)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	h.Query.EnsureGenreAvailable(genre)

	movies, err := h.Query.GetGenrePage(genre, time.Now(), page)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", h.RenderData(c, gin.H{
			"Title":   "出错了",
			"Message": "加载类型榜单失败",
		}))
		return
	}

	genres, _ := h.Repos.Genre.List()

	c.HTML(http.StatusOK, "genre.html", h.RenderData(c, gin.H{
		"Title":  genre.Name + " - " + h.Config.SiteName,
		"Genre":  genre,
		"Genres": genres,
		"Movies": movies,
		"Page":   page,
	}))
}

// SearchPage 搜索结果页（htmx 局部请求时只返回结果片段）
func (h *Handler) SearchPage(c *gin.Context) {
	query := c.Query("q")
	// 长度按字符数算，中文搜索词不能按字节数误判
	if n := utf8.RuneCountInString(query); n < service.SearchQueryMinLen || n > service.SearchQueryMaxLen {
		c.HTML(http.StatusBadRequest, "search.html", h.RenderData(c, gin.H{
			"Title": "搜索 - " + h.Config.SiteName,
			"Query": query,
			"Error": "搜索词长度需在 2 到 100 个字符之间",
		}))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	outcome, err := h.Search.Search(query, page)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", h.RenderData(c, gin.H{
			"Title":   "出错了",
			"Message": "搜索失败",
		}))
		return
	}

	c.HTML(http.StatusOK, "search.html", h.RenderData(c, gin.H{
		"Title":   query + " - " + h.Config.SiteName,
		"Query":   query,
		"Page":    page,
		"Items":   outcome.Items,
		"HasMore": outcome.HasMore,
	}))
}

func (h *Handler) renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
		"Title": "页面不存在",
	}))
}
