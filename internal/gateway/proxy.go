// Package gateway holds the public entry point's rate limiting and
// reverse-proxy layers. Routing to backing services is a fixed table
// built at startup.
package gateway

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ServiceProxy forwards requests to downstream services.
type ServiceProxy struct {
	client *http.Client
}

// NewServiceProxy creates a new service proxy with sensible defaults.
func NewServiceProxy() *ServiceProxy {
	return &ServiceProxy{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ForwardTo creates a handler that proxies requests to the given baseURL,
// forwarding the session cookie so downstream services can authenticate
// the caller.
func (p *ServiceProxy) ForwardTo(baseURL string) fiber.Handler {
	baseURL = strings.TrimRight(baseURL, "/")

	return func(c fiber.Ctx) error {
		targetURL := baseURL + c.Path()
		if q := string(c.Request().URI().QueryString()); q != "" {
			targetURL += "?" + q
		}

		slog.Debug("proxying request",
			"method", c.Method(),
			"from", c.Path(),
			"to", targetURL,
		)

		var bodyReader io.Reader
		if len(c.Body()) > 0 {
			bodyReader = strings.NewReader(string(c.Body()))
		}

		req, err := http.NewRequestWithContext(c.Context(), c.Method(), targetURL, bodyReader)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to create proxy request",
			})
		}

		req.Header.Set("Content-Type", c.Get("Content-Type", "application/json"))
		if cookie := c.Get("Cookie"); cookie != "" {
			req.Header.Set("Cookie", cookie)
		}
		req.Header.Set("X-Forwarded-For", c.IP())
		req.Header.Set("X-Forwarded-Host", c.Hostname())

		resp, err := p.client.Do(req)
		if err != nil {
			slog.Error("proxy request failed", "url", targetURL, "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": fmt.Sprintf("service unavailable: %s", baseURL),
			})
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to read service response",
			})
		}

		for key, vals := range resp.Header {
			for _, val := range vals {
				c.Set(key, val)
			}
		}

		return c.Status(resp.StatusCode).Send(body)
	}
}
