package webhookutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// SecretToken returns the configured webhook secret, generating a fresh
// one when the configuration leaves it empty. The platform echoes the
// secret back on every webhook call.
func SecretToken(configured string) string {
	if configured != "" {
		return configured
	}
	return uuid.NewString()
}

func NewClient(token string) *resty.Client {
	return resty.New().SetBaseURL(fmt.Sprintf("https://api.telegram.org/bot%s", token))
}

// EndpointURL derives the public webhook URL served by the ingress.
func EndpointURL(baseURL, token string) string {
	return fmt.Sprintf("%s/webhook/%s", strings.TrimSuffix(baseURL, "/"), token)
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Register points the platform's webhook at this service.
func Register(ctx context.Context, client *resty.Client, baseURL, token, secret string) error {
	var result apiResponse

	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":          EndpointURL(baseURL, token),
			"secret_token": secret,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/setWebhook")
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK || !result.OK {
		return fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), result.Description)
	}
	return nil
}

// Unregister removes the webhook registration.
func Unregister(ctx context.Context, client *resty.Client) error {
	var result apiResponse

	resp, err := client.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&result).
		Post("/deleteWebhook")
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK || !result.OK {
		return fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), result.Description)
	}
	return nil
}
