// Package backend is the HTTP client for the approvals REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/application/session"
	"github.com/garyjia/approvals-console/internal/domain/apperr"
	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/extract"
	"github.com/garyjia/approvals-console/internal/normalize"
)

// API paths relative to the base URL
const (
	PathLogin        = "/admin/login"
	PathAllDetails   = "/approval/allDetails"
	PathGetDetails   = "/approval/getDetails/"
	PathModifyStatus = "/approval/modifyStatus"
	PathDeviceToken  = "/user/device-token"
)

// Wire status values for modifyStatus
const (
	WireStatusApproved = "APPROVED"
	WireStatusRejected = "REJECTED"
)

// Config holds the client settings
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	DeviceType string
}

// Client implements port.Backend over HTTP
type Client struct {
	baseURL    string
	deviceType string
	httpClient *http.Client
	normalizer *normalize.Normalizer
	validate   *validator.Validate
	logger     *zap.Logger
}

var _ port.Backend = (*Client)(nil)

// Option configures the client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNormalizer replaces the record normalizer
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(c *Client) {
		c.normalizer = n
	}
}

// NewClient creates a new backend client
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	deviceType := cfg.DeviceType
	if deviceType == "" {
		deviceType = entity.DeviceTypeAndroid
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		deviceType: deviceType,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		normalizer: normalize.New(),
		validate:   validator.New(),
		logger:     logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type modifyStatusRequest struct {
	ID     int64   `json:"id"`
	Status string  `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Reason *string `json:"reason"`
}

// response is a completed HTTP exchange
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// object decodes the body as a JSON object; anything else yields nil
func (r *response) object() map[string]interface{} {
	v, err := extract.Decode(r.body)
	if err != nil {
		return nil
	}
	obj, _ := v.(map[string]interface{})
	return obj
}

// Login authenticates an approver. Any rejection maps to a generic
// invalid-credentials error; the backend's reason is only logged.
func (c *Client) Login(ctx context.Context, username, password string) (*entity.User, error) {
	const op = "Login"

	req := loginRequest{Email: strings.TrimSpace(username), Password: password}
	if err := c.validate.Struct(req); err != nil {
		return nil, apperr.Validation(op, "Username and password are required")
	}

	resp, err := c.do(ctx, op, http.MethodPost, PathLogin, req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		c.logger.Warn("Login rejected",
			zap.Int("status", resp.status),
			zap.String("response", string(resp.body)))
		return nil, apperr.Unauthorized(op, resp.status)
	}

	data, _ := extract.FirstObject(resp.object(), "data")
	id, _ := extract.FirstString(data, "id")
	if id == "" {
		return nil, apperr.Server(op, resp.status, "Unexpected login response")
	}

	email, _ := extract.FirstString(data, "email")
	if email == "" {
		email = req.Email
	}
	firstName, _ := extract.FirstString(data, "firstName")
	lastName, _ := extract.FirstString(data, "lastName")

	user := entity.NewUser(id, email, firstName, lastName)
	c.logger.Info("Login succeeded", zap.String("user_id", user.ID))
	return user, nil
}

// List fetches every approval. A missing or null data field is an empty list.
func (c *Client) List(ctx context.Context) ([]*entity.Approval, error) {
	const op = "List"

	resp, err := c.do(ctx, op, http.MethodGet, PathAllDetails, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, c.serverError(op, resp)
	}

	body := resp.object()
	records, ok := body["data"].([]interface{})
	if !ok {
		if body["data"] != nil {
			c.logger.Warn("Approval list data is not an array", zap.String("response", string(resp.body)))
		}
		return []*entity.Approval{}, nil
	}

	approvals := c.normalizer.NormalizeAll(records)
	c.logger.Debug("Approvals fetched", zap.Int("count", len(approvals)))
	return approvals, nil
}

// GetByID fetches one approval
func (c *Client) GetByID(ctx context.Context, id string) (*entity.Approval, error) {
	const op = "GetByID"

	if _, err := parseID(op, id); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, op, http.MethodGet, PathGetDetails+id, nil)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return nil, apperr.NotFound(op, notFoundMessage(resp.object()))
	}
	if !resp.ok() {
		return nil, c.serverError(op, resp)
	}

	record, ok := detailRecord(resp.object())
	if !ok {
		return nil, apperr.NotFound(op, "Approval not found")
	}
	return c.normalizer.Normalize(record), nil
}

// Approve sets the request to approved. A blank reason is sent as null.
func (c *Client) Approve(ctx context.Context, id string, reason string) (*entity.Approval, error) {
	var note *string
	if reason = strings.TrimSpace(reason); reason != "" {
		note = &reason
	}
	return c.modifyStatus(ctx, "Approve", id, WireStatusApproved, note)
}

// Reject sets the request to rejected. The reason must not be blank.
func (c *Client) Reject(ctx context.Context, id string, reason string) (*entity.Approval, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("Reject", "Rejection reason is required")
	}
	return c.modifyStatus(ctx, "Reject", id, WireStatusRejected, &reason)
}

func (c *Client) modifyStatus(ctx context.Context, op, id, status string, reason *string) (*entity.Approval, error) {
	numericID, err := parseID(op, id)
	if err != nil {
		return nil, err
	}

	req := modifyStatusRequest{ID: numericID, Status: status, Reason: reason}
	if err := c.validate.Struct(req); err != nil {
		return nil, apperr.Validation(op, fmt.Sprintf("Invalid status change: %v", err))
	}

	resp, err := c.do(ctx, op, http.MethodPost, PathModifyStatus, req)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return nil, apperr.NotFound(op, notFoundMessage(resp.object()))
	}
	if !resp.ok() {
		return nil, c.serverError(op, resp)
	}

	c.logger.Info("Approval status changed", zap.String("id", id), zap.String("status", status))

	if echoed, ok := extract.FirstObject(resp.object(), "approval", "data"); ok {
		return c.normalizer.Normalize(echoed), nil
	}
	return nil, nil
}

// RegisterDeviceToken registers a push token for the user
func (c *Client) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	const op = "RegisterDeviceToken"

	req := session.Registration{UserID: userID, Token: token, DeviceType: c.deviceType}
	if err := c.validate.Struct(req); err != nil {
		return apperr.Validation(op, fmt.Sprintf("Invalid device registration: %v", err))
	}

	resp, err := c.do(ctx, op, http.MethodPost, PathDeviceToken, req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return c.serverError(op, resp)
	}

	c.logger.Info("Device token registered",
		zap.String("user_id", userID),
		zap.String("device_type", c.deviceType))
	return nil
}

// do performs one JSON request. Only transport failures are returned as
// errors; HTTP status handling is left to the caller.
func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Backend request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Backend request failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.Error(err))
		return nil, apperr.Network(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Network(op, fmt.Errorf("failed to read response: %w", err))
	}

	return &response{status: resp.StatusCode, body: respBody}, nil
}

// serverError maps a non-2xx response onto a Server error carrying the
// backend's message or error field
func (c *Client) serverError(op string, resp *response) error {
	message, _ := extract.FirstString(resp.object(), "message", "error")
	c.logger.Error("Backend returned error",
		zap.String("op", op),
		zap.Int("status", resp.status),
		zap.String("response", string(resp.body)))
	return apperr.Server(op, resp.status, message)
}

// detailRecord picks the approval record out of a getDetails body:
// data, then approval, then the body itself. An explicit null data means
// the record does not exist.
func detailRecord(body map[string]interface{}) (map[string]interface{}, bool) {
	if body == nil {
		return nil, false
	}
	if v, present := body["data"]; present {
		m, ok := v.(map[string]interface{})
		return m, ok
	}
	if m, ok := extract.FirstObject(body, "approval"); ok {
		return m, true
	}
	if _, ok := extract.FirstString(body, "id", "Id", "ID"); ok {
		return body, true
	}
	return nil, false
}

func notFoundMessage(body map[string]interface{}) string {
	if msg, ok := extract.FirstString(body, "message", "error"); ok {
		return msg
	}
	return "Approval not found"
}

// parseID converts an approval id to the integer the backend expects
func parseID(op, id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, apperr.Validation(op, fmt.Sprintf("Invalid approval id %q", id))
	}
	return n, nil
}
