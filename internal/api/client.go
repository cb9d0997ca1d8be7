// Package api is the REST client for the diet backend. All endpoints sit
// behind bearer-token auth; the token comes from the injected auth context
// and any 401 clears it uniformly, regardless of which call tripped it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paytak/internal/auth"
	"paytak/internal/domain"
	"paytak/internal/domain/models"
	"paytak/internal/httputil"
)

// Client talks to the backend API.
type Client struct {
	baseURL string
	httpc   *http.Client
	auth    *auth.Context
	logger  *slog.Logger
}

// NewClient creates an API client rooted at baseURL (e.g.
// "http://localhost:8000/api").
func NewClient(baseURL string, timeout time.Duration, authCtx *auth.Context, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		auth:    authCtx,
		logger:  logger,
	}
}

// do sends a JSON request and decodes the response into dest (nil to discard).
func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	data, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// doRaw sends a JSON request and returns the raw response body.
func (c *Client) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

// send executes a prepared request, attaching the bearer token and applying
// the uniform status handling.
func (c *Client) send(req *http.Request) ([]byte, error) {
	if token, ok := c.auth.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Session expiry is handled globally: drop the token, let the view
		// layer route back to login. No per-call recovery.
		c.logger.Warn("session expired, clearing token", "path", req.URL.Path)
		c.auth.Clear()
		return nil, &domain.APIError{Status: resp.StatusCode, Detail: errorDetail(data)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.APIError{Status: resp.StatusCode, Detail: errorDetail(data)}
	}

	return data, nil
}

// errorDetail pulls a human-readable message out of an error body if there
// is one; the backend uses both "error" and "detail" keys.
func errorDetail(data []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Detail
}

// --- Auth ---

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Age      int     `json:"age,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
	Goal     string  `json:"goal,omitempty"`
}

// Login authenticates and stores the access token in the auth context.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Tokens struct {
			Access string `json:"access"`
		} `json:"tokens"`
		Access string `json:"access"`
	}
	credentials := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login/", credentials, &resp); err != nil {
		return err
	}

	token := resp.Tokens.Access
	if token == "" {
		token = resp.Access
	}
	if token == "" {
		return fmt.Errorf("login response carried no access token")
	}
	return c.auth.SetToken(token)
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register/", req, nil)
}

// Logout drops the stored session.
func (c *Client) Logout() {
	c.auth.Clear()
}

// Profile fetches the user's profile.
func (c *Client) Profile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/profile/", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteAccount removes the account and drops the session.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/auth/delete-account/", nil, nil); err != nil {
		return err
	}
	c.auth.Clear()
	return nil
}

// --- Chat ---

// SendChat posts a user message and returns the assistant's raw response
// text (which may still carry an embedded meal payload).
func (c *Client) SendChat(ctx context.Context, message string) (string, error) {
	var resp struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/ai-chat/", map[string]string{"message": message}, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// ChatHistory fetches the history side list, newest-relevant-first as the
// server orders it.
func (c *Client) ChatHistory(ctx context.Context) ([]models.ChatSummary, error) {
	var resp struct {
		Chats []models.ChatSummary `json:"chats"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/ai-chat/history/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

// ChatMessages fetches the stored exchanges for one chat session.
func (c *Client) ChatMessages(ctx context.Context, chatID string) ([]models.Interaction, error) {
	var resp struct {
		Messages []models.Interaction `json:"messages"`
	}
	path := "/auth/ai-chat/messages/" + url.PathEscape(chatID) + "/"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// --- Meals ---

// AddSuggestedMeal persists a confirmed AI meal suggestion for the given
// local date. The candidate must already carry a resolved meal time.
func (c *Client) AddSuggestedMeal(ctx context.Context, cand models.MealCandidate, date string) error {
	payload := map[string]any{
		"food_name": cand.FoodName,
		"calories":  cand.Calories,
		"protein":   cand.Protein,
		"carbs":     cand.Carbs,
		"fat":       cand.Fat,
		"quantity":  cand.Quantity,
		"meal_time": cand.MealTime,
		"date":      date,
	}
	return c.do(ctx, http.MethodPost, "/auth/ai-meal-add/", payload, nil)
}

// AddMealRequest is the payload for a manual, food-database-backed add.
type AddMealRequest struct {
	FoodID   int             `json:"food_id"`
	Quantity float64         `json:"quantity"`
	MealTime models.MealTime `json:"meal_time"`
	Notes    string          `json:"notes"`
	Date     string          `json:"date"`
}

// AddMeal logs a meal from the food database.
func (c *Client) AddMeal(ctx context.Context, req AddMealRequest) error {
	if req.MealTime == "" {
		req.MealTime = models.MealTimeSnack
	}
	return c.do(ctx, http.MethodPost, "/auth/add-meal/", req, nil)
}

// Meals fetches the day's persisted meal list. Depending on pagination the
// endpoint returns either a bare array or a results envelope.
func (c *Client) Meals(ctx context.Context, date string) ([]models.Meal, error) {
	data, err := c.doRaw(ctx, http.MethodGet, "/auth/meals/?date="+url.QueryEscape(date), nil)
	if err != nil {
		return nil, err
	}
	return httputil.DecodeList[models.Meal](data, "results")
}

// WeeklyReport fetches the trailing seven days of intake totals.
func (c *Client) WeeklyReport(ctx context.Context) ([]models.WeeklyDay, error) {
	var resp struct {
		WeeklyData []models.WeeklyDay `json:"weekly_data"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/weekly-report/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.WeeklyData, nil
}

// SearchFoods queries the food database by name.
func (c *Client) SearchFoods(ctx context.Context, query string) ([]models.Food, error) {
	path := "/auth/foods/?search=" + url.QueryEscape(query) + "&ordering=name"
	data, err := c.doRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return httputil.DecodeList[models.Food](data, "results")
}

// Dashboard fetches the headline stats.
func (c *Client) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/auth/dashboard/", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AnalyzeLabel uploads a food-label image for analysis.
func (c *Client) AnalyzeLabel(ctx context.Context, filename string, image io.Reader) (*models.ScanResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/analyze-food-image/", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := c.send(req)
	if err != nil {
		return nil, err
	}

	var result models.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode scan result: %w", err)
	}
	return &result, nil
}
