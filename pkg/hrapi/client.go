package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hrms-lite/internal/models"
	"github.com/noah-isme/hrms-lite/pkg/config"
)

const maxErrorBody = 64 << 10

// Observer receives timing for every upstream call.
type Observer interface {
	ObserveUpstream(op string, status int, duration time.Duration)
}

// Client talks to the HR REST API.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithObserver attaches latency instrumentation.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a client for the configured upstream.
func New(cfg config.UpstreamConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 50,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListEmployees returns every registered employee.
func (c *Client) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var out []models.Employee
	if err := c.do(ctx, "list_employees", http.MethodGet, "/employees/", nil, decodeList(&out)); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEmployee registers a new employee.
func (c *Client) CreateEmployee(ctx context.Context, req models.EmployeeCreate) (*models.Employee, error) {
	var out models.Employee
	if err := c.do(ctx, "create_employee", http.MethodPost, "/employees/", req, decodeOne(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEmployee removes an employee by its user-assigned identifier.
func (c *Client) DeleteEmployee(ctx context.Context, employeeID string) error {
	return c.do(ctx, "delete_employee", http.MethodDelete, "/employees/"+url.PathEscape(employeeID), nil, nil)
}

// ListAttendance returns every attendance record.
func (c *Client) ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	if err := c.do(ctx, "list_attendance", http.MethodGet, "/attendance/", nil, decodeList(&out)); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAttendanceByEmployee returns the records of a single employee.
func (c *Client) ListAttendanceByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	path := "/attendance/employee/" + url.PathEscape(employeeID)
	if err := c.do(ctx, "list_employee_attendance", http.MethodGet, path, nil, decodeList(&out)); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAttendance creates one attendance record.
func (c *Client) MarkAttendance(ctx context.Context, req models.AttendanceCreate) (*models.AttendanceRecord, error) {
	var out models.AttendanceRecord
	if err := c.do(ctx, "mark_attendance", http.MethodPost, "/attendance/", req, decodeOne(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAttendance removes an attendance record by its system identifier.
func (c *Client) DeleteAttendance(ctx context.Context, recordID string) error {
	return c.do(ctx, "delete_attendance", http.MethodDelete, "/attendance/"+url.PathEscape(recordID), nil, nil)
}

// Ping checks that the HR API answers on its root route.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/", nil, nil)
}

type decoder func(json.RawMessage) error

func decodeList(dest interface{}) decoder {
	return func(raw json.RawMessage) error { return unwrapList(raw, dest) }
}

func decodeOne(dest interface{}) decoder {
	return func(raw json.RawMessage) error { return unwrapOne(raw, dest) }
}

func (c *Client) do(ctx context.Context, op, method, path string, body interface{}, decode decoder) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, 0, time.Since(start))
		c.logger.Warn("upstream request failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.observe(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{Op: op, Status: resp.StatusCode, Detail: parseDetail(raw)}
		c.logger.Info("upstream rejected request", zap.String("op", op), zap.Int("status", resp.StatusCode), zap.String("detail", apiErr.Detail))
		return apiErr
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if err == io.EOF && decode == nil {
			return nil
		}
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if failure := env.embeddedFailure(); failure != nil {
		failure.Op = op
		c.logger.Info("upstream reported failure", zap.String("op", op), zap.Int("code", failure.Status), zap.String("detail", failure.Detail))
		return failure
	}
	if decode == nil {
		return nil
	}
	if err := decode(env.Data); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) observe(op string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(op, status, d)
	}
}
