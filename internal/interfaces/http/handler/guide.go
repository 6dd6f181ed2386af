// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"repair-guide-api/internal/application/guide"
	"repair-guide-api/internal/domain/entity"
	"repair-guide-api/internal/interfaces/http/dto"
	"repair-guide-api/internal/interfaces/http/middleware"
	apperrors "repair-guide-api/pkg/errors"
	"repair-guide-api/pkg/logger"
)

const (
	formDescription = "description"
	formPhoto       = "photo"

	// multipartOverhead 表单字段与边界的额外字节
	multipartOverhead = 1 << 20
)

// GuideHandler 维修指南处理器
type GuideHandler struct {
	sessions     *guide.SessionRegistry
	capabilities dto.CapabilitiesResponse
	maxUpload    int64
}

// NewGuideHandler 创建维修指南处理器
func NewGuideHandler(sessions *guide.SessionRegistry, capabilities dto.CapabilitiesResponse, maxUpload int64) *GuideHandler {
	if maxUpload <= 0 {
		maxUpload = entity.MaxPhotoBytes
	}
	return &GuideHandler{
		sessions:     sessions,
		capabilities: capabilities,
		maxUpload:    maxUpload,
	}
}

// CreateGuide 生成维修指南
// @Summary 生成维修指南
// @Description 上传损坏描述与照片，同步返回配图维修指南
// @Tags Guides
// @Accept multipart/form-data
// @Produce json
// @Param description formData string true "损坏描述（超过 10 个字符）"
// @Param photo formData file true "损坏照片（≤4 MiB）"
// @Success 200 {object} dto.Response[dto.GuideResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/guides [post]
func (h *GuideHandler) CreateGuide(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.readReport(c)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	session := h.sessions.Get(middleware.GetUserIDFromGin(c))
	result, err := session.Submit(ctx, report, nil)
	if err != nil {
		logger.Warn(ctx, "guide request failed", "error", err.Error())
		dto.FromError(c, err)
		return
	}

	dto.Success(c, dto.ToGuideResponse(result))
}

type streamResult struct {
	guide *entity.RepairGuide
	err   error
}

// StreamGuide 以 SSE 推送生成进度与最终指南
// @Summary 流式生成维修指南
// @Description 通过 SSE 推送 progress 事件，最后推送 guide 或 error 事件
// @Tags Guides
// @Accept multipart/form-data
// @Produce text/event-stream
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/guides/stream [post]
func (h *GuideHandler) StreamGuide(c *gin.Context) {
	reqCtx := c.Request.Context()

	report, err := h.readReport(c)
	if err != nil {
		dto.FromError(c, err)
		return
	}
	// 前置条件失败时仍以普通 JSON 响应
	if err := guide.ValidateReport(report); err != nil {
		dto.FromError(c, err)
		return
	}

	session := h.sessions.Get(middleware.GetUserIDFromGin(c))
	if session.Snapshot().State.InFlight() {
		dto.FromError(c, apperrors.ErrGenerationInFlight)
		return
	}

	events := make(chan guide.Progress, 16)
	done := make(chan streamResult, 1)
	observer := guide.ProgressFunc(func(p guide.Progress) {
		select {
		case events <- p:
		case <-reqCtx.Done():
		}
	})

	// 客户端断开后生成继续，结果仍写入会话
	go func() {
		result, err := session.Submit(context.WithoutCancel(reqCtx), report, observer)
		done <- streamResult{guide: result, err: err}
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case p := <-events:
			c.SSEvent("progress", p)
			return true

		case res := <-done:
			// Submit 返回前的进度均已入队
			drainProgress(c, events)
			if res.err != nil {
				c.SSEvent("error", dto.NewErrorResponse(apperrors.AsAppError(res.err)))
				return false
			}
			c.SSEvent("guide", dto.ToGuideResponse(res.guide))
			return false

		case <-reqCtx.Done():
			return false
		}
	})
}

func drainProgress(c *gin.Context, events <-chan guide.Progress) {
	for {
		select {
		case p := <-events:
			c.SSEvent("progress", p)
		default:
			return
		}
	}
}

// GetSession 获取当前会话状态
// @Summary 获取生成会话
// @Tags Guides
// @Produce json
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Router /v1/guides/session [get]
func (h *GuideHandler) GetSession(c *gin.Context) {
	session := h.sessions.Get(middleware.GetUserIDFromGin(c))
	dto.Success(c, dto.ToSessionResponse(session.Snapshot()))
}

// ResetSession 重置会话，丢弃在途结果
// @Summary 重置生成会话
// @Tags Guides
// @Produce json
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Router /v1/guides/session [delete]
func (h *GuideHandler) ResetSession(c *gin.Context) {
	session := h.sessions.Get(middleware.GetUserIDFromGin(c))
	session.Reset(c.Request.Context())
	dto.Success(c, dto.ToSessionResponse(session.Snapshot()))
}

// GetCapabilities 返回当前配置下的可用能力
// @Summary 能力查询
// @Tags Guides
// @Produce json
// @Success 200 {object} dto.Response[dto.CapabilitiesResponse]
// @Router /v1/guides/capabilities [get]
func (h *GuideHandler) GetCapabilities(c *gin.Context) {
	dto.Success(c, h.capabilities)
}

// readReport 读取表单；照片最多读取上限加一字节，超限直接拒绝
func (h *GuideHandler) readReport(c *gin.Context) (*entity.DamageReport, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)

	report := &entity.DamageReport{
		Description: c.PostForm(formDescription),
	}

	fh, err := c.FormFile(formPhoto)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, apperrors.ErrFileTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return report, nil
		default:
			return nil, apperrors.ErrInvalidParam.WithDetail("invalid multipart form").WithError(err)
		}
	}

	photo, err := readPhoto(fh, h.maxUpload)
	if err != nil {
		return nil, err
	}
	report.Photo = photo
	return report, nil
}

func readPhoto(fh *multipart.FileHeader, limit int64) (*entity.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.ErrInvalidParam.WithDetail("unable to read photo").WithError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, apperrors.ErrInvalidParam.WithDetail("unable to read photo").WithError(err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	// 上限低于 4 MiB 时截断的照片会通过编排器校验，这里先拒绝
	if int64(len(data)) > limit {
		return nil, apperrors.ErrFileTooLarge
	}

	mt := mimetype.Detect(data).String()
	if !strings.HasPrefix(mt, "image/") {
		return nil, apperrors.ErrValidationFailed.WithDetail("Only image uploads are supported.")
	}

	return &entity.Photo{
		Data:     data,
		MIMEType: mt,
		Filename: fh.Filename,
	}, nil
}
