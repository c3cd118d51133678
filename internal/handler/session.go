package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/service"
)

// 错误码
const (
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeSessionNotComplete = "SESSION_NOT_COMPLETE"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNoteNotFound       = "NOTE_NOT_FOUND"
	CodeInternal           = "INTERNAL"
)

// SessionHandler 晨间对话接口
type SessionHandler struct {
	service *service.DialogueService
}

func NewSessionHandler(service *service.DialogueService) *SessionHandler {
	return &SessionHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("/start", h.Start)
		sessions.GET("/:sessionId", h.Get)
		sessions.POST("/:sessionId/answer", h.Answer)
		sessions.POST("/:sessionId/finalize", h.Finalize)
		sessions.GET("/:sessionId/note", h.GetNote)
	}
}

// StartRequest 开始会话请求
type StartRequest struct {
	UserID          string `json:"userId" binding:"required"`
	TemplateVersion string `json:"templateVersion" binding:"required"`
}

// AnswerRequest 回答请求，transcript 与 audioUrl 至少提供一个
type AnswerRequest struct {
	Transcript string `json:"transcript"`
	AudioURL   string `json:"audioUrl" binding:"omitempty,url"`
}

// FinalizeResponse finalize 响应
type FinalizeResponse struct {
	SessionID string `json:"sessionId"`
	Markdown  string `json:"markdown"`
}

// NoteResponse 已归档晨记
type NoteResponse struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Markdown  string    `json:"markdown"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	res, err := h.service.Start(c.Request.Context(), req.UserID, req.TemplateVersion)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SessionHandler) Answer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	res, err := h.service.Answer(c.Request.Context(), c.Param("sessionId"), service.AnswerInput{
		Transcript: req.Transcript,
		AudioURL:   req.AudioURL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SessionHandler) Finalize(c *gin.Context) {
	res, err := h.service.Finalize(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, FinalizeResponse{SessionID: res.SessionID, Markdown: res.Markdown})
}

// Get 会话快照
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) GetNote(c *gin.Context) {
	note, err := h.service.GetNote(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NoteResponse{
		SessionID: note.SessionID,
		UserID:    note.UserID,
		Markdown:  note.Markdown,
		Source:    note.Source,
		UpdatedAt: note.UpdatedAt,
	})
}

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, CodeSessionNotFound, err.Error())
	case errors.Is(err, service.ErrSessionNotComplete):
		writeError(c, http.StatusConflict, CodeSessionNotComplete, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, CodeInvalidInput, err.Error())
	case errors.Is(err, service.ErrNoteNotFound):
		writeError(c, http.StatusNotFound, CodeNoteNotFound, err.Error())
	default:
		klog.Errorf("请求处理失败: path=%s, error=%v", c.FullPath(), err)
		writeError(c, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
