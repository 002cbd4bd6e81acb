package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CloudinaryConfig holds the account credentials for signed REST calls.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// CloudinaryProvider talks to the Cloudinary upload REST API directly.
type CloudinaryProvider struct {
	cfg     CloudinaryConfig
	client  *http.Client
	baseURL string
}

func NewCloudinary(cfg CloudinaryConfig) *CloudinaryProvider {
	return &CloudinaryProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: fmt.Sprintf("https://api.cloudinary.com/v1_1/%s", cfg.CloudName),
	}
}

func (p *CloudinaryProvider) Upload(ctx context.Context, filename string, content io.Reader) (*Upload, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"timestamp": timestamp,
	}
	if p.cfg.Folder != "" {
		params["folder"] = p.cfg.Folder
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("cloudinary upload: %w", err)
		}
	}
	if err := writer.WriteField("api_key", p.cfg.APIKey); err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if err := writer.WriteField("signature", p.sign(params)); err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/image/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("cloudinary upload: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var result struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("cloudinary upload: decode response: %w", err)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("cloudinary upload: empty public_id in response")
	}

	return &Upload{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func (p *CloudinaryProvider) Delete(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := make([]string, 0, 4)
	form = append(form,
		"public_id="+publicID,
		"timestamp="+timestamp,
		"api_key="+p.cfg.APIKey,
		"signature="+p.sign(params),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/image/destroy",
		strings.NewReader(strings.Join(form, "&")))
	if err != nil {
		return fmt.Errorf("cloudinary delete: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("cloudinary delete: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return nil
}

// sign builds the SHA-1 request signature over the sorted parameter string.
func (p *CloudinaryProvider) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + p.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}
