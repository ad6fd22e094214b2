package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func getSearch(r *gin.Engine, q string) int {
	req := httptest.NewRequest("GET", "/search?q="+url.QueryEscape(q), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestSearchPageLengthCountsRunesNotBytes(t *testing.T) {
	r, _, queue := setupAPI(t)
	defer queue.Stop()

	// 单个中文字符占 3 字节但只有 1 个字符，必须拒绝
	assert.Equal(t, http.StatusBadRequest, getSearch(r, "火"))
	// 34 个中文字符超过 100 字节但远在 100 字符以内，必须放行
	assert.Equal(t, http.StatusOK, getSearch(r, strings.Repeat("火", 34)))
}

func TestSearchPageLengthBoundaries(t *testing.T) {
	r, _, queue := setupAPI(t)
	defer queue.Stop()

	assert.Equal(t, http.StatusBadRequest, getSearch(r, ""))
	assert.Equal(t, http.StatusBadRequest, getSearch(r, "a"))
	assert.Equal(t, http.StatusOK, getSearch(r, "ab"))
	assert.Equal(t, http.StatusOK, getSearch(r, strings.Repeat("a", 100)))
	assert.Equal(t, http.StatusBadRequest, getSearch(r, strings.Repeat("a", 101)))
	assert.Equal(t, http.StatusBadRequest, getSearch(r, strings.Repeat("火", 101)))
}
