package packlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.packlink.com/v1"

// Client is a thin wrapper over the Packlink shipment services API. Only the
// rate lookup is consumed here.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type serviceQuote struct {
	Name      string  `json:"name"`
	Currency  string  `json:"currency"`
	TotalCost float64 `json:"total_price"`
}

type servicesRequest struct {
	From     location  `json:"from"`
	To       location  `json:"to"`
	Packages []pack    `json:"packages"`
}

type location struct {
	Country string `json:"country"`
}

type pack struct {
	WeightKG float64 `json:"weight"`
}

// CheapestService returns the lowest-priced service for the shipment, in
// cents of the service currency.
func (c *Client) CheapestService(ctx context.Context, fromCountry, toCountry string, weightGrams int) (name, currency string, amountCents int64, err error) {
	body, err := json.Marshal(servicesRequest{
		From:     location{Country: fromCountry},
		To:       location{Country: toCountry},
		Packages: []pack{{WeightKG: float64(weightGrams) / 1000}},
	})
	if err != nil {
		return "", "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/services", bytes.NewReader(body))
	if err != nil {
		return "", "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", "", 0, fmt.Errorf("packlink services: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var services []serviceQuote
	if err := json.NewDecoder(resp.Body).Decode(&services); err != nil {
		return "", "", 0, fmt.Errorf("packlink services: decode response: %w", err)
	}
	if len(services) == 0 {
		return "", "", 0, fmt.Errorf("packlink services: no services available")
	}

	best := services[0]
	for _, svc := range services[1:] {
		if svc.TotalCost < best.TotalCost {
			best = svc
		}
	}
	return best.Name, strings.ToUpper(best.Currency), int64(math.Round(best.TotalCost * 100)), nil
}
