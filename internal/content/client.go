// Package content reads pages and configurator option bags from the
// headless content source.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"knife-atelier/internal/configurator"
)

// Configurator step routes.
const (
	RouteModels       = "configurateur-modeles"
	RouteWoods        = "configurateur-bois"
	RouteEngravings   = "configurateur-guillochages"
	RoutePersonalize  = "configurateur-personnalisation"
	RouteConfirmation = "configurateur-finalisation"
)

type Client struct {
	baseURL     string
	placeholder string
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, placeholder string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		placeholder: placeholder,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Page is one document of the content source.
type Page struct {
	Title   string
	Content string
	bag     json.RawMessage
}

// Bag returns the options bag of the page: the acf object, or the content
// field when it holds an object.
func (p Page) Bag() json.RawMessage {
	return p.bag
}

type rawPage struct {
	Title   json.RawMessage `json:"title"`
	Content json.RawMessage `json:"content"`
	ACF     json.RawMessage `json:"acf"`
}

// GetPage fetches route. A JSON array response yields its first page.
func (c *Client) GetPage(ctx context.Context, route string) (Page, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(route, "/")),
		nil,
	)
	if err != nil {
		return Page{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Content source returned an error",
			zap.String("route", route),
			zap.Int("status", resp.StatusCode))
		return Page{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Page{}, fmt.Errorf("decode response: %w", err)
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var pages []json.RawMessage
		if err := json.Unmarshal(body, &pages); err != nil {
			return Page{}, fmt.Errorf("decode response: %w", err)
		}
		if len(pages) == 0 {
			return Page{}, nil
		}
		body = pages[0]
	}

	var raw rawPage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Page{}, fmt.Errorf("decode page: %w", err)
	}

	page := Page{
		Title:   renderedText(raw.Title),
		Content: renderedText(raw.Content),
	}
	switch {
	case isObject(raw.ACF):
		page.bag = raw.ACF
	case isObject(raw.Content) && !hasRendered(raw.Content):
		page.bag = raw.Content
	}
	return page, nil
}

func (c *Client) Models(ctx context.Context) ([]configurator.Model, error) {
	page, err := c.GetPage(ctx, RouteModels)
	if err != nil {
		return nil, err
	}
	return ModelsFromBag(page.Bag(), c.placeholder), nil
}

func (c *Client) Woods(ctx context.Context) ([]configurator.Wood, error) {
	page, err := c.GetPage(ctx, RouteWoods)
	if err != nil {
		return nil, err
	}
	return WoodsFromBag(page.Bag(), c.placeholder), nil
}

func (c *Client) Engravings(ctx context.Context) ([]configurator.Engraving, error) {
	page, err := c.GetPage(ctx, RouteEngravings)
	if err != nil {
		return nil, err
	}
	return EngravingsFromBag(page.Bag(), c.placeholder), nil
}

func (c *Client) FormFields(ctx context.Context) ([]configurator.FormField, error) {
	page, err := c.GetPage(ctx, RoutePersonalize)
	if err != nil {
		return nil, err
	}
	return FormFieldsFromBag(page.Bag()), nil
}

func (c *Client) Actions(ctx context.Context) ([]configurator.Action, string, error) {
	page, err := c.GetPage(ctx, RouteConfirmation)
	if err != nil {
		return nil, "", err
	}
	actions, summary := ActionsFromBag(page.Bag())
	return actions, summary, nil
}

// renderedText reads either "text" or {"rendered": "text"}.
func renderedText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var r struct {
		Rendered string `json:"rendered"`
	}
	if err := json.Unmarshal(raw, &r); err == nil {
		return r.Rendered
	}
	return ""
}

func hasRendered(raw json.RawMessage) bool {
	var r map[string]json.RawMessage
	if err := json.Unmarshal(raw, &r); err != nil {
		return false
	}
	_, ok := r["rendered"]
	return ok
}
