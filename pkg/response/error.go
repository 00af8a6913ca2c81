package response

import (
	"errors"
	"net/http"

	"github.com/3xSu/FilmComment/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Kind 业务错误分类
type Kind int

const (
	KindInvalid Kind = iota
	KindNotFound
	KindAlreadyExists
	KindConflict
	KindUnauthorized
	KindForbidden
	KindUpload
	KindTransient
	KindFatal
)

var kindCodes = map[Kind]int{
	KindInvalid:       http.StatusBadRequest,
	KindNotFound:      http.StatusNotFound,
	KindAlreadyExists: http.StatusConflict,
	KindConflict:      http.StatusConflict,
	KindUnauthorized:  http.StatusUnauthorized,
	KindForbidden:     http.StatusForbidden,
	KindUpload:        http.StatusUnprocessableEntity,
	KindTransient:     http.StatusServiceUnavailable,
	KindFatal:         http.StatusInternalServerError,
}

type BizError struct {
	Code int
	Msg  string
	Kind Kind
}

func (e *BizError) Error() string {
	return e.Msg
}

// HTTPStatus 业务错误默认走 200，鉴权和系统错误使用对应状态码
func (e *BizError) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindFatal:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

func newKind(kind Kind, msg string) *BizError {
	return &BizError{Code: kindCodes[kind], Msg: msg, Kind: kind}
}

func Invalid(msg string) *BizError       { return newKind(KindInvalid, msg) }
func NotFound(msg string) *BizError      { return newKind(KindNotFound, msg) }
func AlreadyExists(msg string) *BizError { return newKind(KindAlreadyExists, msg) }
func Conflict(msg string) *BizError      { return newKind(KindConflict, msg) }
func Unauthorized(msg string) *BizError  { return newKind(KindUnauthorized, msg) }
func Forbidden(msg string) *BizError     { return newKind(KindForbidden, msg) }
func Upload(msg string) *BizError        { return newKind(KindUpload, msg) }
func Transient(msg string) *BizError     { return newKind(KindTransient, msg) }
func Fatal(msg string) *BizError         { return newKind(KindFatal, msg) }

// IsKind 判断错误链上是否存在指定类型的业务错误
func IsKind(err error, kind Kind) bool {
	var be *BizError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// ErrorMiddleware 统一渲染处理函数通过 c.Error 记录的错误
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var be *BizError
		if errors.As(err, &be) {
			c.AbortWithStatusJSON(be.HTTPStatus(), Response{Code: be.Code, Msg: be.Msg})
			return
		}
		log.L.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
			Code: http.StatusInternalServerError,
			Msg:  "系统异常",
		})
	}
}

func Abort(c *gin.Context, httpStatus int, msg string) {
	c.AbortWithStatusJSON(httpStatus, Response{
		Code: httpStatus,
		Msg:  msg,
		Data: nil,
	})
}
