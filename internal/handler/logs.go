package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/swfilms/internal/logging"
	"github.com/user/swfilms/internal/middleware"
	"github.com/user/swfilms/internal/model"
	"github.com/user/swfilms/internal/service"
	"github.com/user/swfilms/internal/utils"
)

// LogRegisterRequest 客户端提交的请求日志
type LogRegisterRequest struct {
	RequestMethod string `json:"request_method" validate:"required,oneof=GET POST"`
	Endpoint      string `json:"endpoint" validate:"required,max=2048"`
	ResponseCode  int    `json:"response_code" validate:"required,min=100,max=599"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// 错误信息使用 JSON 字段名
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// QueryLogs 按 API Key 与天数窗口查询请求日志
func (h *Handler) QueryLogs(c *gin.Context) {
	q := service.LogQuery{
		Days:     c.Query("days"),
		Finished: c.Query("finished"),
	}

	result, user, err := h.Logs.QueryLogs(c.Request.Context(), c.Query("apikey"), q)
	if user != nil {
		middleware.SetUserID(c, user.ID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, result)
}

// RegisterLog 写入客户端提交的请求日志
func (h *Handler) RegisterLog(c *gin.Context) {
	var req LogRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid JSON body.")
		return
	}

	if fields := validateRequest(&req); fields != nil {
		utils.Respond(c, http.StatusBadRequest, gin.H{
			"error":  "Invalid log data.",
			"fields": fields,
		})
		return
	}

	ip := c.ClientIP()
	if ip == "" {
		ip = model.UnknownIP
	}

	id, err := h.Logs.RecordLog(c.Request.Context(), &model.LogEntry{
		RequestMethod: req.RequestMethod,
		Endpoint:      utils.RedactQuery(req.Endpoint),
		ResponseCode:  req.ResponseCode,
		UserIP:        ip,
	})
	if err != nil {
		logging.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("[Handler] 写入客户端日志失败")
		utils.InternalServerError(c, "Failed to register log")
		return
	}
	middleware.SkipRequestLog(c)

	utils.Success(c, gin.H{
		"message": "Log registered successfully!",
		"log_id":  id,
	})
}

// validateRequest 返回 字段 -> 错误信息，校验通过返回 nil
func validateRequest(s interface{}) map[string]string {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"body": err.Error()}
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[fe.Field()] = translateError(fe)
	}
	return fields
}

func translateError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
