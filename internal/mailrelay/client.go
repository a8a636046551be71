// Package mailrelay talks to the endpoint that turns a contact or quote
// request into a mail deep link.
package mailrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type RequestType string

const (
	TypeContact RequestType = "contact"
	TypeQuote   RequestType = "devis"
)

type Request struct {
	Nom       string      `json:"nom"`
	Objet     string      `json:"objet"`
	Message   string      `json:"message"`
	Type      RequestType `json:"type"`
	Prenom    string      `json:"prenom,omitempty"`
	Email     string      `json:"email,omitempty"`
	Telephone string      `json:"telephone,omitempty"`
	Adresse   string      `json:"adresse,omitempty"`
	Panier    string      `json:"panier,omitempty"`
}

// Result is the relay answer. Transport problems are folded into it too.
type Result struct {
	Success    bool   `json:"success"`
	MailtoLink string `json:"mailtoLink,omitempty"`
	Error      string `json:"error,omitempty"`
}

type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Submit posts req and always returns a Result.
func (c *Client) Submit(ctx context.Context, req Request) Result {
	res, err := c.submit(ctx, req)
	if err != nil {
		c.logger.Error("Mail relay request failed",
			zap.String("type", string(req.Type)),
			zap.Error(err))
		return Result{Success: false, Error: "Le service d'envoi est indisponible, veuillez réessayer plus tard."}
	}
	if !res.Success && res.Error == "" {
		res.Error = "La demande n'a pas pu être envoyée."
	}
	return res
}

func (c *Client) submit(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return Result{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	// a non-2xx answer with a readable body keeps the relay's own message
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Success = false
	}
	return res, nil
}
