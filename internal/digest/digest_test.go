package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/store"
)

type stubScorer struct {
	ids      []string
	probs    map[string]float64
	profiles map[string]domain.CustomerRecord
}

func (s *stubScorer) ListCustomerIDs() ([]string, error) {
	return s.ids, nil
}

func (s *stubScorer) GetCustomerProfile(customerID string) (domain.CustomerRecord, error) {
	p, ok := s.profiles[customerID]
	if !ok {
		return domain.CustomerRecord{}, &store.CustomerNotFoundError{CustomerID: customerID, Table: "customer_profiles"}
	}
	return p, nil
}

func (s *stubScorer) PredictChurnProbability(customerID string) (float64, error) {
	return s.probs[customerID], nil
}

func newStubScorer() *stubScorer {
	return &stubScorer{
		ids: []string{"C1", "C2", "C3", "C4"},
		probs: map[string]float64{
			"C1": 0.42, "C2": 0.91, "C3": 0.05, "C4": 0.91,
		},
		profiles: map[string]domain.CustomerRecord{
			"C1": {CustomerID: "C1", Contract: "One year", Tenure: 30, MonthlyCharges: "55.00"},
			"C2": {CustomerID: "C2", Contract: "Month-to-month", Tenure: 2, MonthlyCharges: "95.00"},
			"C3": {CustomerID: "C3", Contract: "Two year", Tenure: 60, MonthlyCharges: "20.00"},
			// C4 deliberately has no profile row.
		},
	}
}

func TestBuildRanksByProbabilityWithStableTies(t *testing.T) {
	d, err := Build(newStubScorer(), 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if d.Scored != 4 {
		t.Fatalf("expected 4 scored customers, got %d", d.Scored)
	}
	var order []string
	for _, e := range d.Entries {
		order = append(order, e.CustomerID)
	}
	want := []string{"C2", "C4", "C1", "C3"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected ranking %v, want %v", order, want)
		}
	}
	if d.Entries[0].ValueSegment != domain.SegmentHigh {
		t.Fatalf("C2 at 95.00 should be high value, got %s", d.Entries[0].ValueSegment)
	}
}

func TestBuildKeepsTopN(t *testing.T) {
	d, err := Build(newStubScorer(), 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(d.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(d.Entries))
	}
}

func TestBuildReportsMissingProfileRows(t *testing.T) {
	d, err := Build(newStubScorer(), 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(d.Errors) != 1 || !strings.Contains(d.Errors[0], "C4") {
		t.Fatalf("expected a warning for C4's missing profile, got %v", d.Errors)
	}
	// The scored entry itself still appears, probability intact.
	for _, e := range d.Entries {
		if e.CustomerID == "C4" {
			if e.ChurnProbability != 0.91 {
				t.Fatalf("C4 probability lost: %v", e.ChurnProbability)
			}
			return
		}
	}
	t.Fatalf("C4 missing from entries")
}

func TestRenderMarkdownAndWriteFile(t *testing.T) {
	d, err := Build(newStubScorer(), 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	d.GeneratedAt = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	content := RenderMarkdown(d)
	if !strings.Contains(content, "Churn Risk Digest — 2026-03-02") {
		t.Fatalf("missing digest title:\n%s", content)
	}
	if !strings.Contains(content, "| 1 | C2 | 91.0% | high |") {
		t.Fatalf("missing top entry row:\n%s", content)
	}
	if !strings.Contains(content, "Warnings:") {
		t.Fatalf("missing warnings block:\n%s", content)
	}

	dir := t.TempDir()
	path, err := WriteFile(content, dir, d.GeneratedAt)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if filepath.Base(path) != "churn-digest-2026-03-02.md" {
		t.Fatalf("unexpected digest filename %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading digest file failed: %v", err)
	}
	if string(data) != content {
		t.Fatalf("digest file content mismatch")
	}
}
