package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(postPublishRules, types.PostPublishRequest{})
	return v
}

// postPublishRules 图文帖需要正文或图片且不能带视频，视频帖只能有一个视频
func postPublishRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(types.PostPublishRequest)
	switch req.ContentForm {
	case types.ContentFormTextImage:
		if strings.TrimSpace(req.Content) == "" && len(req.ImageURLs) == 0 {
			sl.ReportError(req.Content, "Content", "content", "content_or_images", "")
		}
		if req.VideoURL != "" {
			sl.ReportError(req.VideoURL, "VideoURL", "videoUrl", "no_video", "")
		}
	case types.ContentFormVideo:
		if req.VideoURL == "" {
			sl.ReportError(req.VideoURL, "VideoURL", "videoUrl", "video_required", "")
		}
		if len(req.ImageURLs) > 0 {
			sl.ReportError(req.ImageURLs, "ImageURLs", "imageUrls", "no_images", "")
		}
	}
}

var tagMessages = map[string]string{
	"content_or_images": "图文帖需要填写内容或上传图片",
	"no_video":          "图文帖不能包含视频",
	"video_required":    "视频帖必须上传视频",
	"no_images":         "视频帖不能包含图片",
}

// validateStruct 校验失败返回 Invalid，取第一条错误
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return response.Invalid(err.Error())
	}
	fe := verrs[0]
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return response.Invalid(msg)
	}
	if fe.Param() != "" {
		return response.Invalid(fmt.Sprintf("参数 %s 不满足 %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return response.Invalid(fmt.Sprintf("参数 %s 不满足 %s", fe.Field(), fe.Tag()))
}
