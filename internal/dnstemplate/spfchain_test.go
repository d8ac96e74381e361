package dnstemplate

import (
	"fmt"
	"strings"
	"testing"

	"porkbun_console/internal/dnstypes"
)

func TestGenerateSPFChainRecordCount(t *testing.T) {
	tests := []struct {
		name       string
		chainDepth int
		expected   int // wildcard + chain hops + final
	}{
		{name: "depth 0 gives wildcard plus direct include", chainDepth: 0, expected: 2},
		{name: "depth 1", chainDepth: 1, expected: 3},
		{name: "depth 4 default", chainDepth: 4, expected: 6},
		{name: "negative depth treated as 0", chainDepth: -3, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := GenerateSPFChain("example.com", SPFChainOptions{ChainDepth: tt.chainDepth})
			if err != nil {
				t.Fatalf("GenerateSPFChain() error = %v", err)
			}
			if len(result.Records) != tt.expected {
				t.Errorf("got %d records; want %d", len(result.Records), tt.expected)
			}
		})
	}
}

func TestGenerateSPFChainLabels(t *testing.T) {
	result, err := GenerateSPFChain("example.com", SPFChainOptions{
		ChainDepth:     6,
		MinLabelLength: 40,
	})
	if err != nil {
		t.Fatalf("GenerateSPFChain() error = %v", err)
	}

	labels, ok := result.Metadata["label_chain"].([]string)
	if !ok {
		t.Fatalf("label_chain metadata missing or wrong type: %v", result.Metadata["label_chain"])
	}
	if len(labels) != 6 {
		t.Fatalf("got %d labels; want 6", len(labels))
	}

	seen := make(map[string]bool)
	for _, label := range labels {
		if len(label) < 40 {
			t.Errorf("label %q shorter than requested minimum 40", label)
		}
		if seen[label] {
			t.Errorf("duplicate label %q in chain", label)
		}
		seen[label] = true

		for _, c := range label {
			if !strings.ContainsRune(labelAlphabet, c) {
				t.Errorf("label %q contains character %q outside alphabet", label, c)
			}
		}
	}
}

func TestGenerateSPFChainLabelLengthFloor(t *testing.T) {
	result, err := GenerateSPFChain("example.com", SPFChainOptions{
		ChainDepth:     2,
		MinLabelLength: 5, // below the floor of 30
	})
	if err != nil {
		t.Fatalf("GenerateSPFChain() error = %v", err)
	}
	labels := result.Metadata["label_chain"].([]string)
	for _, label := range labels {
		if len(label) < 30 {
			t.Errorf("label %q shorter than floor 30", label)
		}
	}
}

func TestGenerateSPFChainEndToEnd(t *testing.T) {
	// domain example.com, chain_depth=2, min_label_length=30:
	// *, _spf -> label1, label1 -> label2, label2 -> final include
	result, err := GenerateSPFChain("example.com", SPFChainOptions{
		ChainDepth:     2,
		MinLabelLength: 30,
	})
	if err != nil {
		t.Fatalf("GenerateSPFChain() error = %v", err)
	}
	if len(result.Records) != 4 {
		t.Fatalf("got %d records; want 4", len(result.Records))
	}

	labels := result.Metadata["label_chain"].([]string)
	if len(labels) != 2 {
		t.Fatalf("got %d labels; want 2", len(labels))
	}
	label1, label2 := labels[0], labels[1]
	if label1 == label2 {
		t.Fatal("chain labels must be distinct")
	}
	if len(label1) < 30 || len(label2) < 30 {
		t.Errorf("labels must be at least 30 chars: %q, %q", label1, label2)
	}

	expected := []struct {
		name    string
		content string
	}{
		{"*", "v=spf1 redirect=_spf.example.com."},
		{"_spf", fmt.Sprintf("v=spf1 redirect=%s.example.com.", label1)},
		{label1, fmt.Sprintf("v=spf1 redirect=%s.example.com.", label2)},
		{label2, "v=spf1 include:_spf.AUTUMNWINDZ.COM ~all"},
	}

	for i, want := range expected {
		rec := result.Records[i]
		if rec.Type != dnstypes.TypeTXT {
			t.Errorf("record %d type = %q; want TXT", i, rec.Type)
		}
		if rec.Name != want.name {
			t.Errorf("record %d name = %q; want %q", i, rec.Name, want.name)
		}
		if rec.Content != want.content {
			t.Errorf("record %d content = %q; want %q", i, rec.Content, want.content)
		}
		if rec.TTL < dnstypes.MinTTL {
			t.Errorf("record %d ttl = %d; want >= %d", i, rec.TTL, dnstypes.MinTTL)
		}
	}
}

func TestGenerateSPFChainCustomFinalContent(t *testing.T) {
	result, err := GenerateSPFChain("example.com", SPFChainOptions{
		ChainDepth:   0,
		FinalContent: "v=spf1 include:_spf.google.com ~all",
	})
	if err != nil {
		t.Fatalf("GenerateSPFChain() error = %v", err)
	}
	last := result.Records[len(result.Records)-1]
	if last.Content != "v=spf1 include:_spf.google.com ~all" {
		t.Errorf("final content = %q", last.Content)
	}
	if last.Name != "_spf" {
		t.Errorf("depth 0 final record name = %q; want _spf", last.Name)
	}
}

func TestGenerateSPFChainEmptyDomain(t *testing.T) {
	if _, err := GenerateSPFChain("  ", SPFChainOptions{}); err == nil {
		t.Error("expected error for empty domain")
	}
}

func TestTemplateRegistry(t *testing.T) {
	def := Get("spf-chain")
	if def == nil {
		t.Fatal("spf-chain template not registered")
	}

	result, err := def.Generate("example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	// default depth 4: wildcard + _spf + 3 intermediate hops + final
	if len(result.Records) != DefaultChainDepth+2 {
		t.Errorf("got %d records; want %d", len(result.Records), DefaultChainDepth+2)
	}

	if Get("missing") != nil {
		t.Error("Get(missing) should return nil")
	}
	if len(List()) == 0 {
		t.Error("List() should not be empty")
	}
}
