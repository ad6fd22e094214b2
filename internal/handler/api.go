package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/moviepulse/internal/model"
	"github.com/user/moviepulse/internal/utils"
)

// ClickRequest 点击上报请求体
type ClickRequest struct {
	TmdbMovieID int    `json:"tmdb_movie_id" binding:"required,gt=0"`
	MovieTitle  string `json:"movie_title" binding:"required,max=255"`
	PosterPath  string `json:"poster_path" binding:"omitempty,max=255"`
}

// RecordClick 记录一次点击，返回最新的最近浏览列表
// 同一 (ip, 电影, 秒) 的重复提交被唯一约束吸收，不报错
func (h *Handler) RecordClick(c *gin.Context) {
	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "参数校验失败",
				"fields":  fields,
				"success": false,
			})
			return
		}
		utils.BadRequest(c, "请求体格式错误")
		return
	}

	click := &model.MovieClick{
		IPAddress:   c.ClientIP(),
		TmdbMovieID: req.TmdbMovieID,
		MovieTitle:  req.MovieTitle,
		PosterPath:  req.PosterPath,
		ClickedAt:   time.Now(),
	}
	if err := h.Repos.Click.Create(click); err != nil {
		utils.InternalServerError(c, "记录点击失败")
		return
	}

	// 点击的电影已入库但还没同步过详情时，顺手排一个详情任务
	if movie, err := h.Repos.Movie.FindByTmdbID(req.TmdbMovieID); err == nil &&
		movie != nil && movie.DetailsSyncedAt == nil {
		h.Queue.Submit(h.Sync.DetailsJob(movie.ID))
	}

	recent, err := h.Repos.Click.RecentViews(10)
	if err != nil {
		utils.InternalServerError(c, "读取最近浏览失败")
		return
	}

	// htmx 局部更新的客户端直接回 HTML 片段
	if c.GetHeader("HX-Request") != "" {
		c.HTML(http.StatusOK, "recent_views.html", gin.H{"Recent": recent})
		return
	}
	utils.Success(c, recent)
}

// RecentViews 最近浏览列表
func (h *Handler) RecentViews(c *gin.Context) {
	recent, err := h.Repos.Click.RecentViews(10)
	if err != nil {
		utils.InternalServerError(c, "读取最近浏览失败")
		return
	}
	utils.Success(c, recent)
}

// HeatmapData 点击热度聚合数据
func (h *Handler) HeatmapData(c *gin.Context) {
	heat, err := h.Repos.Click.HeatmapData(50)
	if err != nil {
		utils.InternalServerError(c, "读取热度数据失败")
		return
	}
	utils.Success(c, heat)
}

// GenresJSON 类型列表
func (h *Handler) GenresJSON(c *gin.Context) {
	genres, err := h.Repos.Genre.List()
	if err != nil {
		utils.InternalServerError(c, "读取类型列表失败")
		return
	}
	utils.Success(c, genres)
}
