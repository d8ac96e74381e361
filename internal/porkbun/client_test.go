package porkbun

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"porkbun_console/internal/dnstypes"
)

func TestPing(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		expected bool
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"SUCCESS","yourIp":"1.2.3.4"}`))
			},
			expected: true,
		},
		{
			name: "auth failure returns false not error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"ERROR","message":"Invalid API keys."}`))
			},
			expected: false,
		},
		{
			name: "server error returns false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient("key", "secret", WithBaseURL(srv.URL))
			if got := client.Ping(context.Background()); got != tt.expected {
				t.Errorf("Ping() = %v; want %v", got, tt.expected)
			}
		})
	}
}

func TestPostMergesAuth(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"status":"SUCCESS","ns":["a.example.net","b.example.net"]}`))
	}))
	defer srv.Close()

	client := NewClient("pk1_key", "sk1_secret", WithBaseURL(srv.URL))
	ns, err := client.GetNameservers(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("GetNameservers() error = %v", err)
	}
	if len(ns) != 2 {
		t.Errorf("GetNameservers() returned %d entries; want 2", len(ns))
	}
	if body["apikey"] != "pk1_key" || body["secretapikey"] != "sk1_secret" {
		t.Errorf("request body missing credentials: %v", body)
	}
}

func TestUpdateNameserversValidation(t *testing.T) {
	tests := []struct {
		name        string
		nameservers []string
		wantSent    []string // nil means no network call expected
	}{
		{
			name:        "empty list rejected without network call",
			nameservers: []string{},
		},
		{
			name:        "whitespace-only entries rejected",
			nameservers: []string{"  ", "\t"},
		},
		{
			name:        "single valid entry rejected",
			nameservers: []string{"ns1.example.net", ""},
		},
		{
			name:        "malformed entries dropped",
			nameservers: []string{"ns1.example.net", "abc", "ns2.example.net"},
			wantSent:    []string{"ns1.example.net", "ns2.example.net"},
		},
		{
			name:        "entries trimmed and case preserved",
			nameservers: []string{" NS1.Example.NET ", "ns2.example.net"},
			wantSent:    []string{"NS1.Example.NET", "ns2.example.net"},
		},
		{
			name: "truncated to 10 entries",
			nameservers: []string{
				"ns1.example.net", "ns2.example.net", "ns3.example.net",
				"ns4.example.net", "ns5.example.net", "ns6.example.net",
				"ns7.example.net", "ns8.example.net", "ns9.example.net",
				"ns10.example.net", "ns11.example.net",
			},
			wantSent: []string{
				"ns1.example.net", "ns2.example.net", "ns3.example.net",
				"ns4.example.net", "ns5.example.net", "ns6.example.net",
				"ns7.example.net", "ns8.example.net", "ns9.example.net",
				"ns10.example.net",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := 0
			var sent struct {
				NS []string `json:"ns"`
			}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				json.NewDecoder(r.Body).Decode(&sent)
				w.Write([]byte(`{"status":"SUCCESS"}`))
			}))
			defer srv.Close()

			client := NewClient("key", "secret", WithBaseURL(srv.URL))
			err := client.UpdateNameservers(context.Background(), "example.com", tt.nameservers)

			if tt.wantSent == nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("UpdateNameservers() error = %v; want ValidationError", err)
				}
				if requests != 0 {
					t.Errorf("expected no network call, got %d requests", requests)
				}
				return
			}

			if err != nil {
				t.Fatalf("UpdateNameservers() error = %v", err)
			}
			if requests != 1 {
				t.Fatalf("expected 1 request, got %d", requests)
			}
			if len(sent.NS) != len(tt.wantSent) {
				t.Fatalf("sent %d nameservers; want %d", len(sent.NS), len(tt.wantSent))
			}
			for i := range sent.NS {
				if sent.NS[i] != tt.wantSent[i] {
					t.Errorf("sent[%d] = %q; want %q", i, sent.NS[i], tt.wantSent[i])
				}
			}
		})
	}
}

func TestIsPorkbunNameservers(t *testing.T) {
	tests := []struct {
		name        string
		nameservers []string
		expected    bool
	}{
		{
			name:        "empty list is false",
			nameservers: []string{},
			expected:    false,
		},
		{
			name:        "all porkbun defaults",
			nameservers: DefaultNameservers(),
			expected:    true,
		},
		{
			name:        "case insensitive match",
			nameservers: []string{"Curitiba.NS.Porkbun.COM", "maceio.ns.porkbun.com"},
			expected:    true,
		},
		{
			name:        "one foreign entry fails the whole list",
			nameservers: []string{"curitiba.ns.porkbun.com", "fortaleza.ns.porkbun.com", "ns1.other.net"},
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPorkbunNameservers(tt.nameservers); got != tt.expected {
				t.Errorf("IsPorkbunNameservers(%v) = %v; want %v", tt.nameservers, got, tt.expected)
			}
		})
	}
}

func TestErrorTranslation(t *testing.T) {
	tests := []struct {
		name    string
		message string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "invalid keys",
			message: "Invalid API keys.",
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Errorf("error = %T; want *AuthError", err)
				}
			},
		},
		{
			name:    "api access disabled carries domain",
			message: "Domain is not opted in to API access.",
			check: func(t *testing.T, err error) {
				var accessErr *APIAccessDisabledError
				if !errors.As(err, &accessErr) {
					t.Fatalf("error = %T; want *APIAccessDisabledError", err)
				}
				if accessErr.Domain != "example.com" {
					t.Errorf("Domain = %q; want example.com", accessErr.Domain)
				}
			},
		},
		{
			name:    "generic error passes message through",
			message: "Invalid record type.",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("error = %T; want *APIError", err)
				}
				if apiErr.Message != "Invalid record type." {
					t.Errorf("Message = %q", apiErr.Message)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{
					"status":  "ERROR",
					"message": tt.message,
				})
			}))
			defer srv.Close()

			client := NewClient("key", "secret", WithBaseURL(srv.URL))
			_, err := client.GetRecords(context.Background(), "example.com")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			tt.check(t, err)
		})
	}
}

func TestCreateRecordPayload(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`{"status":"SUCCESS","id":106926659}`))
	}))
	defer srv.Close()

	prio := 10
	client := NewClient("key", "secret", WithBaseURL(srv.URL))
	id, err := client.CreateRecord(context.Background(), "example.com", dnstypes.RecordRequest{
		Type:    dnstypes.TypeMX,
		Name:    "mail",
		Content: "mx.example.com",
		TTL:     600,
		Prio:    &prio,
		Notes:   "primary MX",
	})
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	if id != "106926659" {
		t.Errorf("CreateRecord() id = %q; want 106926659", id)
	}

	// ttl and prio must be stringified on the wire
	if payload["ttl"] != "600" {
		t.Errorf("ttl = %v (%T); want string \"600\"", payload["ttl"], payload["ttl"])
	}
	if payload["prio"] != "10" {
		t.Errorf("prio = %v (%T); want string \"10\"", payload["prio"], payload["prio"])
	}
	if payload["name"] != "mail" || payload["type"] != "MX" || payload["notes"] != "primary MX" {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestBulkDeleteRecordsContinuesPastFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fail record id 2, succeed otherwise
		if r.URL.Path == "/dns/delete/example.com/2" {
			w.Write([]byte(`{"status":"ERROR","message":"Record does not exist."}`))
			return
		}
		w.Write([]byte(`{"status":"SUCCESS"}`))
	}))
	defer srv.Close()

	client := NewClient("key", "secret", WithBaseURL(srv.URL))
	results := client.BulkDeleteRecords(context.Background(), "example.com", []string{"1", "2", "3"})

	if len(results) != 3 {
		t.Fatalf("got %d results; want 3", len(results))
	}
	if !results[0].OK || results[1].OK || !results[2].OK {
		t.Errorf("unexpected outcomes: %+v", results)
	}
	if results[1].Error == "" {
		t.Error("failed deletion should carry an error message")
	}
}
