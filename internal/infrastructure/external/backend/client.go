// Package backend implements the typed client of the trajectory backend.
// It is the only component that speaks HTTP: it attaches the session's
// bearer token, validates every payload at the boundary and reports
// failures as the shared error kinds (auth, network, malformed).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/domain/student"
	"github.com/trajectory-hub/student-dashboard/internal/domain/trajectory"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/metrics"
	"github.com/trajectory-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// DefaultBehavioralDays is the dashboard's telemetry window.
const DefaultBehavioralDays = 7

// maxBodySize bounds how much of a response is read.
const maxBodySize = 4 << 20

// Endpoint paths.
const (
	PathLogin            = "/api/auth/login"
	PathRegister         = "/api/auth/register"
	PathMe               = "/api/auth/me"
	PathProfile          = "/api/student/profile"
	PathBehavioral       = "/api/student/behavioral"
	PathSkills           = "/api/student/skills"
	PathPredict          = "/api/predict"
	PathInsights         = "/api/behavioral/insights"
	PathAlumniComparison = "/api/behavioral/comparison"
)

// ClientConfig contains configuration for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL, without a trailing slash.
	BaseURL string

	// Timeout bounds every request end to end. Zero disables it.
	Timeout time.Duration

	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client

	// Logger for structured logging
	Logger *zap.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// TokenSource supplies the bearer token of the current session.
// *sessionstore.Store satisfies it.
type TokenSource interface {
	Token() string
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the backend API client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
	tokens     TokenSource
	mapper     *Mapper
}

// NewClient creates a new backend client reading its credential from
// tokens. tokens may be nil, in which case only explicit tokens are sent.
func NewClient(config ClientConfig, tokens TokenSource) *Client {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     config.Logger.With(logger.Component("backend")),
		tokens:     tokens,
		mapper:     NewMapper(),
	}
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Login exchanges credentials for a token. The body is form-encoded with
// the e-mail sent as "username".
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	body, err := c.doRequest(ctx, call{
		op:     "Login",
		method: http.MethodPost,
		path:   PathLogin,
		form:   form,
		bearer: c.sessionToken(),
	})
	if err != nil {
		return "", err
	}
	return c.decodeToken("Login", body)
}

// Register creates an account and returns its token. An empty role
// defaults to student.
func (c *Client) Register(ctx context.Context, email, password string, role session.Role) (string, error) {
	if role == "" {
		role = session.RoleStudent
	}

	body, err := c.doRequest(ctx, call{
		op:     "Register",
		method: http.MethodPost,
		path:   PathRegister,
		json:   RegisterRequestDTO{Email: email, Password: password, Role: string(role)},
		bearer: c.sessionToken(),
	})
	if err != nil {
		return "", err
	}
	return c.decodeToken("Register", body)
}

// Me resolves token to the user it belongs to. The token is passed
// explicitly so a candidate can be verified before it becomes the
// session's credential.
func (c *Client) Me(ctx context.Context, token string) (session.User, error) {
	body, err := c.doRequest(ctx, call{
		op:     "Me",
		method: http.MethodGet,
		path:   PathMe,
		bearer: token,
	})
	if err != nil {
		return session.User{}, err
	}

	var dto UserDTO
	if err := c.decode("Me", body, "", &dto, "id", "email"); err != nil {
		return session.User{}, err
	}
	user, err := c.mapper.UserFromDTO(&dto)
	if err != nil {
		return session.User{}, malformed("Me", err)
	}
	return user, nil
}

func (c *Client) decodeToken(op string, body []byte) (string, error) {
	var dto TokenDTO
	if err := c.decode(op, body, "", &dto, "access_token"); err != nil {
		return "", err
	}
	token, err := c.mapper.TokenFromDTO(&dto)
	if err != nil {
		return "", malformed(op, err)
	}
	return token, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetProfile fetches the current student's profile.
func (c *Client) GetProfile(ctx context.Context) (student.Profile, error) {
	body, err := c.doRequest(ctx, c.authed("GetProfile", http.MethodGet, PathProfile))
	if err != nil {
		return student.Profile{}, err
	}

	var dto ProfileDTO
	if err := c.decode("GetProfile", body, "", &dto, "id", "user_id"); err != nil {
		return student.Profile{}, err
	}
	profile, err := c.mapper.ProfileFromDTO(&dto)
	if err != nil {
		return student.Profile{}, malformed("GetProfile", err)
	}
	return profile, nil
}

// GetBehavioral fetches the last days of telemetry, newest first as the
// backend returns them. days <= 0 uses DefaultBehavioralDays.
func (c *Client) GetBehavioral(ctx context.Context, days int) ([]student.BehavioralRecord, error) {
	if days <= 0 {
		days = DefaultBehavioralDays
	}
	req := c.authed("GetBehavioral", http.MethodGet, PathBehavioral)
	req.query = url.Values{"days": {strconv.Itoa(days)}}

	body, err := c.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	var dtos []BehavioralDTO
	if err := c.decode("GetBehavioral", body, "data", &dtos); err != nil {
		return nil, err
	}
	records, err := c.mapper.BehavioralFromDTOs(dtos)
	if err != nil {
		return nil, malformed("GetBehavioral", err)
	}
	return records, nil
}

// GetSkills fetches the student's assessed skills.
func (c *Client) GetSkills(ctx context.Context) ([]student.Skill, error) {
	body, err := c.doRequest(ctx, c.authed("GetSkills", http.MethodGet, PathSkills))
	if err != nil {
		return nil, err
	}

	var dtos []SkillDTO
	if err := c.decode("GetSkills", body, "skills", &dtos); err != nil {
		return nil, err
	}
	skills, err := c.mapper.SkillsFromDTOs(dtos)
	if err != nil {
		return nil, malformed("GetSkills", err)
	}
	return skills, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TRAJECTORY OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetPrediction asks the backend to compute the trajectory prediction.
// The request body is an empty JSON object.
func (c *Client) GetPrediction(ctx context.Context) (trajectory.Prediction, error) {
	req := c.authed("GetPrediction", http.MethodPost, PathPredict)
	req.json = struct{}{}

	body, err := c.doRequest(ctx, req)
	if err != nil {
		return trajectory.Prediction{}, err
	}

	var dto PredictionDTO
	if err := c.decode("GetPrediction", body, "", &dto,
		"trajectory_score", "component_scores", "confidence", "trend"); err != nil {
		return trajectory.Prediction{}, err
	}
	prediction, err := c.mapper.PredictionFromDTO(&dto)
	if err != nil {
		return trajectory.Prediction{}, malformed("GetPrediction", err)
	}
	return prediction, nil
}

// GetInsights fetches the behavioral insights.
func (c *Client) GetInsights(ctx context.Context) (trajectory.Insights, error) {
	body, err := c.doRequest(ctx, c.authed("GetInsights", http.MethodGet, PathInsights))
	if err != nil {
		return trajectory.Insights{}, err
	}

	var dto InsightsDTO
	if err := c.decode("GetInsights", body, "", &dto, "comparison", "recommendations"); err != nil {
		return trajectory.Insights{}, err
	}
	insights, err := c.mapper.InsightsFromDTO(&dto)
	if err != nil {
		return trajectory.Insights{}, malformed("GetInsights", err)
	}
	return insights, nil
}

// GetAlumniComparison fetches the comparison against successful alumni.
func (c *Client) GetAlumniComparison(ctx context.Context) (trajectory.AlumniComparison, error) {
	body, err := c.doRequest(ctx, c.authed("GetAlumniComparison", http.MethodGet, PathAlumniComparison))
	if err != nil {
		return trajectory.AlumniComparison{}, err
	}

	var dto AlumniComparisonDTO
	if err := c.decode("GetAlumniComparison", body, "", &dto,
		"screen_time", "focus_score", "sleep"); err != nil {
		return trajectory.AlumniComparison{}, err
	}
	cmp, err := c.mapper.AlumniComparisonFromDTO(&dto)
	if err != nil {
		return trajectory.AlumniComparison{}, malformed("GetAlumniComparison", err)
	}
	return cmp, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy checks if the backend root answers with a 2xx.
func (c *Client) IsHealthy(ctx context.Context) bool {
	_, err := c.doRequest(ctx, call{op: "IsHealthy", method: http.MethodGet, path: "/"})
	return err == nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// call describes one request. At most one of form and json is set.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	form   url.Values
	json   any
	bearer string
}

func (c *Client) authed(op, method, path string) call {
	return call{op: op, method: method, path: path, bearer: c.sessionToken()}
}

func (c *Client) sessionToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// doRequest performs a single request and records its outcome. There is
// no retry: a failed call is reported to the caller as is.
func (c *Client) doRequest(ctx context.Context, cl call) ([]byte, error) {
	start := time.Now()
	body, err := c.doSingleRequest(ctx, cl)
	metrics.RecordBackendRequest(cl.path, outcomeOf(err), time.Since(start))
	return body, err
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, cl call) ([]byte, error) {
	fullURL := c.config.BaseURL + cl.path
	if len(cl.query) > 0 {
		fullURL += "?" + cl.query.Encode()
	}

	var (
		bodyReader  io.Reader
		contentType string
	)
	switch {
	case cl.form != nil:
		bodyReader = strings.NewReader(cl.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case cl.json != nil:
		jsonBody, err := json.Marshal(cl.json)
		if err != nil {
			return nil, shared.WrapError("backend", cl.op, shared.ErrInvalidInput, "marshal body", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, fullURL, bodyReader)
	if err != nil {
		return nil, shared.WrapError("backend", cl.op, shared.ErrInvalidInput, "create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// No token, no header: never send an empty bearer.
	if cl.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+cl.bearer)
	}

	log := c.logger.With(
		logger.RequestID(requestID),
		logger.Operation(cl.op),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("backend unreachable", zap.Error(err), logger.Latency(time.Since(start)))
		return nil, shared.WrapError("backend", cl.op, shared.ErrNetworkFailure, "backend unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, shared.WrapError("backend", cl.op, shared.ErrNetworkFailure, "read response", err)
	}

	log.Debug("backend response", logger.Status(resp.StatusCode), logger.Latency(time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Status:    resp.StatusCode,
			Detail:    extractDetail(respBody),
			RequestID: requestID,
		}
		kind := shared.ErrExternalService
		if apiErr.IsAuth() {
			kind = shared.ErrAuthFailure
		}
		msg := apiErr.Detail
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, shared.WrapError("backend", cl.op, kind, msg, apiErr)
	}

	return respBody, nil
}

// decode unmarshals body into v. With a non-empty envelope the array under
// that key is decoded instead of the whole body. required lists top-level
// keys that must be present.
func (c *Client) decode(op string, body []byte, envelope string, v any, required ...string) error {
	if !gjson.ValidBytes(body) {
		return malformed(op, fmt.Errorf("invalid JSON body"))
	}

	raw := body
	if envelope != "" {
		inner := gjson.GetBytes(body, envelope)
		if !inner.IsArray() {
			return malformed(op, fmt.Errorf("missing %q array", envelope))
		}
		raw = []byte(inner.Raw)
	}

	if len(required) > 0 {
		for i, r := range gjson.GetManyBytes(raw, required...) {
			if !r.Exists() {
				return malformed(op, fmt.Errorf("missing field %q", required[i]))
			}
		}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return malformed(op, err)
	}
	return nil
}

func malformed(op string, err error) error {
	return shared.WrapError("backend", op, shared.ErrMalformedResponse, "unexpected response", err)
}
