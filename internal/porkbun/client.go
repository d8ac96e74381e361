package porkbun

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"porkbun_console/internal/dnstypes"
)

const (
	// DefaultBaseURL is the production Porkbun API endpoint
	DefaultBaseURL = "https://api.porkbun.com/api/json/v3"

	requestTimeout = 10 * time.Second

	// MaxNameservers is the maximum number of nameservers updateNs accepts
	MaxNameservers = 10
)

// defaultNameservers is Porkbun's fixed default nameserver set
var defaultNameservers = []string{
	"curitiba.ns.porkbun.com",
	"fortaleza.ns.porkbun.com",
	"maceio.ns.porkbun.com",
	"salvador.ns.porkbun.com",
}

// Client is a Porkbun DNS API client. All operations are synchronous
// POST requests carrying the key pair in the JSON body.
type Client struct {
	apiKey       string
	secretAPIKey string
	baseURL      string
	client       *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new Porkbun API client
func NewClient(apiKey, secretAPIKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		secretAPIKey: secretAPIKey,
		baseURL:      DefaultBaseURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the envelope every Porkbun response carries
type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Domain is a registered domain as returned by /domain/listAll
type Domain struct {
	Domain       string `json:"domain"`
	Status       string `json:"status"`
	TLD          string `json:"tld"`
	CreateDate   string `json:"createDate"`
	ExpireDate   string `json:"expireDate"`
	SecurityLock string `json:"securityLock"`
	WhoisPrivacy string `json:"whoisPrivacy"`
	AutoRenew    any    `json:"autoRenew"`
	NotLocal     any    `json:"notLocal"`
}

// Record is a DNS record as returned by the API. Porkbun sends numeric
// fields (id, ttl, prio) as strings on the wire.
type Record struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     string `json:"ttl"`
	Prio    string `json:"prio"`
	Notes   string `json:"notes"`
}

// post sends a POST request to the given endpoint with the key pair merged
// into the payload and decodes the response into out, which must embed
// apiResponse. ERROR responses are translated into typed errors.
func (c *Client) post(ctx context.Context, endpoint string, payload map[string]any, out any) error {
	body := map[string]any{
		"apikey":       c.apiKey,
		"secretapikey": c.secretAPIKey,
	}
	for k, v := range payload {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	// The API reports business errors as JSON with status=ERROR even on
	// non-200 statuses, so try to decode before checking the status code.
	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &RequestError{Endpoint: endpoint, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
		}
		return &RequestError{Endpoint: endpoint, Err: fmt.Errorf("invalid JSON response: %w", err)}
	}

	if envelope.Status == "ERROR" {
		return translateAPIError(endpoint, envelope.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return &RequestError{Endpoint: endpoint, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &RequestError{Endpoint: endpoint, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// Ping tests whether the key pair authenticates. It never returns an error
// for auth or transport failures, only false.
func (c *Client) Ping(ctx context.Context) bool {
	var resp apiResponse
	if err := c.post(ctx, "/ping", nil, &resp); err != nil {
		return false
	}
	return resp.Status == "SUCCESS"
}

// ListDomains returns all domains on the account
func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	var resp struct {
		apiResponse
		Domains []Domain `json:"domains"`
	}
	if err := c.post(ctx, "/domain/listAll", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Domains, nil
}

// GetNameservers returns the current nameservers for a domain
func (c *Client) GetNameservers(ctx context.Context, domain string) ([]string, error) {
	var resp struct {
		apiResponse
		NS []string `json:"ns"`
	}
	if err := c.post(ctx, "/domain/getNs/"+domain, nil, &resp); err != nil {
		return nil, err
	}
	return resp.NS, nil
}

// UpdateNameservers replaces the nameserver set for a domain.
// Entries are trimmed and malformed or empty entries dropped; at least 2
// valid entries are required or the call is rejected without any network
// traffic. At most MaxNameservers entries are sent.
func (c *Client) UpdateNameservers(ctx context.Context, domain string, nameservers []string) error {
	valid := make([]string, 0, len(nameservers))
	for _, ns := range nameservers {
		ns = strings.TrimSpace(ns)
		if ns == "" {
			continue
		}
		// Basic hostname shape check; case is preserved
		if strings.Contains(ns, ".") && len(ns) > 3 {
			valid = append(valid, ns)
		}
	}

	if len(valid) == 0 {
		return &ValidationError{Message: fmt.Sprintf(
			"no valid nameservers given; to restore Porkbun defaults use: %s",
			strings.Join(defaultNameservers, ", "))}
	}
	if len(valid) < 2 {
		return &ValidationError{Message: "at least 2 nameservers are required"}
	}
	if len(valid) > MaxNameservers {
		valid = valid[:MaxNameservers]
	}

	err := c.post(ctx, "/domain/updateNs/"+domain, map[string]any{"ns": valid}, nil)
	if err != nil {
		// A 500 here usually means the domain currently has an empty or
		// inconsistent nameserver set on the registrar side. Enrich the
		// error with the manual recovery steps.
		var reqErr *RequestError
		if errors.As(err, &reqErr) && strings.Contains(reqErr.Err.Error(), "HTTP 500") {
			return &APIError{Message: fmt.Sprintf(
				"nameserver update for %s failed (HTTP 500). Attempted: %s. "+
					"Check the current nameservers at https://porkbun.com/account/domainsSpeedy?domain=%s; "+
					"if they are empty, set the Porkbun defaults first (%s), then retry",
				domain, strings.Join(valid, ", "), domain, strings.Join(defaultNameservers, ", "))}
		}
		return err
	}
	return nil
}

// DefaultNameservers returns Porkbun's default nameserver set
func DefaultNameservers() []string {
	out := make([]string, len(defaultNameservers))
	copy(out, defaultNameservers)
	return out
}

// IsPorkbunNameservers reports whether every entry belongs to Porkbun.
// An empty list is not considered Porkbun-hosted.
func IsPorkbunNameservers(nameservers []string) bool {
	if len(nameservers) == 0 {
		return false
	}
	for _, ns := range nameservers {
		if !strings.Contains(strings.ToLower(ns), "porkbun.com") {
			return false
		}
	}
	return true
}

// GetRecords retrieves all DNS records for a domain
func (c *Client) GetRecords(ctx context.Context, domain string) ([]Record, error) {
	var resp struct {
		apiResponse
		Records []Record `json:"records"`
	}
	if err := c.post(ctx, "/dns/retrieve/"+domain, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// GetRecordsByNameType retrieves records matching a type and optional subdomain
func (c *Client) GetRecordsByNameType(ctx context.Context, domain, recordType, subdomain string) ([]Record, error) {
	endpoint := "/dns/retrieveByNameType/" + domain + "/" + recordType
	if subdomain != "" {
		endpoint += "/" + subdomain
	}
	var resp struct {
		apiResponse
		Records []Record `json:"records"`
	}
	if err := c.post(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// recordPayload builds the wire payload for create/edit operations.
// Porkbun expects ttl and prio stringified.
func recordPayload(req dnstypes.RecordRequest) map[string]any {
	payload := map[string]any{
		"type":    req.Type,
		"content": req.Content,
		"ttl":     strconv.Itoa(req.TTL),
	}
	if req.Name != "" {
		payload["name"] = req.Name
	}
	if req.Prio != nil {
		payload["prio"] = strconv.Itoa(*req.Prio)
	}
	if req.Notes != "" {
		payload["notes"] = req.Notes
	}
	return payload
}

// CreateRecord creates a DNS record and returns the new record ID
func (c *Client) CreateRecord(ctx context.Context, domain string, req dnstypes.RecordRequest) (string, error) {
	var resp struct {
		apiResponse
		ID json.Number `json:"id"`
	}
	if err := c.post(ctx, "/dns/create/"+domain, recordPayload(req), &resp); err != nil {
		return "", err
	}
	return resp.ID.String(), nil
}

// EditRecord edits an existing DNS record by ID
func (c *Client) EditRecord(ctx context.Context, domain, recordID string, req dnstypes.RecordRequest) error {
	return c.post(ctx, "/dns/edit/"+domain+"/"+recordID, recordPayload(req), nil)
}

// EditRecordByNameType edits records matching a type and optional subdomain
func (c *Client) EditRecordByNameType(ctx context.Context, domain, recordType, subdomain string, req dnstypes.RecordRequest) error {
	endpoint := "/dns/editByNameType/" + domain + "/" + recordType
	if subdomain != "" {
		endpoint += "/" + subdomain
	}
	payload := map[string]any{
		"content": req.Content,
		"ttl":     strconv.Itoa(req.TTL),
	}
	if req.Prio != nil {
		payload["prio"] = strconv.Itoa(*req.Prio)
	}
	if req.Notes != "" {
		payload["notes"] = req.Notes
	}
	return c.post(ctx, endpoint, payload, nil)
}

// DeleteRecord deletes a DNS record by ID
func (c *Client) DeleteRecord(ctx context.Context, domain, recordID string) error {
	return c.post(ctx, "/dns/delete/"+domain+"/"+recordID, nil, nil)
}

// DeleteRecordsByNameType deletes records matching a type and optional subdomain
func (c *Client) DeleteRecordsByNameType(ctx context.Context, domain, recordType, subdomain string) error {
	endpoint := "/dns/deleteByNameType/" + domain + "/" + recordType
	if subdomain != "" {
		endpoint += "/" + subdomain
	}
	return c.post(ctx, endpoint, nil, nil)
}

// DeleteResult is the per-record outcome of a bulk deletion
type DeleteResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkDeleteRecords deletes multiple records, continuing past failures
func (c *Client) BulkDeleteRecords(ctx context.Context, domain string, recordIDs []string) []DeleteResult {
	results := make([]DeleteResult, 0, len(recordIDs))
	for _, id := range recordIDs {
		if err := c.DeleteRecord(ctx, domain, id); err != nil {
			results = append(results, DeleteResult{ID: id, OK: false, Error: err.Error()})
			continue
		}
		results = append(results, DeleteResult{ID: id, OK: true})
	}
	return results
}
