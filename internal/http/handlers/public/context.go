package public

import (
	"strconv"
	"strings"

	"github.com/mowen-blog/internal/access"
	handlershared "github.com/mowen-blog/internal/http/handlers/shared"
	"github.com/mowen-blog/internal/http/response"

	"github.com/gin-gonic/gin"
)

func currentActor(c *gin.Context) access.Actor {
	return handlershared.CurrentActor(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}

// parseIDParam 解析路径中的数字 ID，非法时返回 400
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "无效的 ID", nil)
		return 0, false
	}
	return uint(id), true
}

// parsePageQuery 解析分页查询参数
func parsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return handlershared.NormalizePagination(page, pageSize)
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}
