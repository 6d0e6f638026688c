package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/approvals-console/internal/application/session"
	"github.com/garyjia/approvals-console/internal/devserver"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	backend *devserver.Service
	logger  Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(backend *devserver.Service, logger Logger) *Handlers {
	return &Handlers{
		backend: backend,
		logger:  logger,
	}
}

// Envelope is the response body for every endpoint
type Envelope struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Timestamp  string      `json:"timestamp"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func envelope(status int, message string, data interface{}) Envelope {
	return Envelope{
		Message:    message,
		StatusCode: status,
		Data:       data,
		Timestamp:  timestamp(),
	}
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope(status, message, data))
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respond(c, http.StatusOK, "ok", HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// Login handles POST /api/v1/admin/login
func (h *Handlers) Login(c *gin.Context) {
	var req devserver.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	result, err := h.backend.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "Login failed", err)
		return
	}

	respond(c, http.StatusOK, "Login successful", result)
}

// ListApprovals handles GET /api/v1/approval/allDetails
func (h *Handlers) ListApprovals(c *gin.Context) {
	records, err := h.backend.ListRecords(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to list approvals", err)
		return
	}
	respond(c, http.StatusOK, "Approvals retrieved", records)
}

// GetApproval handles GET /api/v1/approval/getDetails/:id
func (h *Handlers) GetApproval(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		respond(c, http.StatusBadRequest, "invalid approval id", nil)
		return
	}

	record, err := h.backend.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Failed to get approval", err)
		return
	}
	respond(c, http.StatusOK, "Approval retrieved", record)
}

// ModifyStatus handles POST /api/v1/approval/modifyStatus
func (h *Handlers) ModifyStatus(c *gin.Context) {
	var req devserver.ModifyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	record, err := h.backend.ModifyStatus(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "Failed to modify status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Status updated",
		"statusCode": http.StatusOK,
		"approval":   record,
		"timestamp":  timestamp(),
	})
}

// CreateApproval handles POST /api/v1/approval/create
func (h *Handlers) CreateApproval(c *gin.Context) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	record, err := h.backend.CreateApproval(c.Request.Context(), raw)
	if err != nil {
		h.fail(c, "Failed to create approval", err)
		return
	}
	respond(c, http.StatusCreated, "Approval created", record)
}

// RegisterDeviceToken handles POST /api/v1/user/device-token
func (h *Handlers) RegisterDeviceToken(c *gin.Context) {
	var req session.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	if err := h.backend.RegisterDeviceToken(c.Request.Context(), req); err != nil {
		h.fail(c, "Failed to register device token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Device token registered",
		"statusCode": http.StatusOK,
		"success":    true,
		"timestamp":  timestamp(),
	})
}

// fail maps backend errors onto HTTP statuses
func (h *Handlers) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, devserver.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, devserver.ErrNotFound):
		respond(c, http.StatusNotFound, "Approval not found", nil)
	case errors.Is(err, devserver.ErrInvalidRequest):
		respond(c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.logger.Error(msg, "error", err)
		respond(c, http.StatusInternalServerError, msg, nil)
	}
}
