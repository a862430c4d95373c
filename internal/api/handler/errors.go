package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperr "github.com/VijayVPatil13/Digital-Lab-Records/pkg/errors"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/response"
)

// writeError 业务错误 → HTTP 状态码 + 统一响应体
// 非业务错误一律 500，不向客户端泄露内部信息
func writeError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	var status int
	switch e.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindForbidden:
		status = http.StatusForbidden
	default:
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	response.Error(c, status, e.Code, e.Message)
}

// bindError 请求体/查询参数校验失败，details 中给出首个失败字段
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "Invalid request parameters.",
			fe.Field()+" failed on '"+fe.Tag()+"'")
		return
	}
	response.BadRequest(c, 10001, "Invalid request parameters.")
}
