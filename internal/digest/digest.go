// Package digest produces the periodic churn-risk digest: every customer is
// scored, the riskiest are ranked, and the result is written to the report
// dir and optionally posted to Slack. The serving path never depends on it.
package digest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/store"
)

// Scorer is the slice of the data store the digest needs.
type Scorer interface {
	ListCustomerIDs() ([]string, error)
	GetCustomerProfile(customerID string) (domain.CustomerRecord, error)
	PredictChurnProbability(customerID string) (float64, error)
}

// Entry is one ranked digest row.
type Entry struct {
	CustomerID       string
	ChurnProbability float64
	ValueSegment     domain.ValueSegment
	Contract         string
	Tenure           int
	MonthlyCharges   string
}

// Digest is one batch scoring run. Errors collects per-customer problems that
// did not stop the run (a feature row without a profile row is expected after
// the total-charges drop filter and is reported, not fatal).
type Digest struct {
	GeneratedAt time.Time
	Scored      int
	Entries     []Entry
	Errors      []string
}

// Build scores every known customer and keeps the topN highest churn risks.
func Build(sc Scorer, topN int) (Digest, error) {
	ids, err := sc.ListCustomerIDs()
	if err != nil {
		return Digest{}, err
	}

	d := Digest{GeneratedAt: time.Now()}
	var entries []Entry
	for _, id := range ids {
		prob, err := sc.PredictChurnProbability(id)
		if err != nil {
			return Digest{}, fmt.Errorf("scoring %s: %w", id, err)
		}
		d.Scored++

		entry := Entry{CustomerID: id, ChurnProbability: prob}
		profile, err := sc.GetCustomerProfile(id)
		if err != nil {
			var notFound *store.CustomerNotFoundError
			if errors.As(err, &notFound) {
				d.Errors = append(d.Errors, fmt.Sprintf("%s: no profile row", id))
				entries = append(entries, entry)
				continue
			}
			return Digest{}, err
		}
		entry.Contract = profile.Contract
		entry.Tenure = profile.Tenure
		entry.MonthlyCharges = profile.MonthlyCharges

		segment, err := domain.SegmentForMonthlyCharge(profile.MonthlyCharges)
		if err != nil {
			d.Errors = append(d.Errors, fmt.Sprintf("%s: %v", id, err))
			entries = append(entries, entry)
			continue
		}
		entry.ValueSegment = segment
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ChurnProbability != entries[j].ChurnProbability {
			return entries[i].ChurnProbability > entries[j].ChurnProbability
		}
		return entries[i].CustomerID < entries[j].CustomerID
	})
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	d.Entries = entries
	return d, nil
}

// RenderMarkdown formats the digest for the report file and Slack.
func RenderMarkdown(d Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Churn Risk Digest — %s\n\n", d.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Scored %d customers. Top %d risks:\n\n", d.Scored, len(d.Entries))
	b.WriteString("| # | Customer | Churn Prob | Segment | Contract | Tenure | Monthly |\n")
	b.WriteString("|---|----------|-----------|---------|----------|--------|--------|\n")
	for i, e := range d.Entries {
		segment := string(e.ValueSegment)
		if segment == "" {
			segment = "-"
		}
		contract := e.Contract
		if contract == "" {
			contract = "-"
		}
		fmt.Fprintf(&b, "| %d | %s | %.1f%% | %s | %s | %d | %s |\n",
			i+1, e.CustomerID, e.ChurnProbability*100, segment, contract, e.Tenure, e.MonthlyCharges)
	}
	if len(d.Errors) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, msg := range d.Errors {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}
	return b.String()
}

// Summary is the one-line log/Slack lead for a digest run.
func Summary(d Digest) string {
	msg := fmt.Sprintf("Scored %d customers, %d top risks", d.Scored, len(d.Entries))
	if len(d.Entries) > 0 {
		msg += fmt.Sprintf(", highest %.1f%% (%s)", d.Entries[0].ChurnProbability*100, d.Entries[0].CustomerID)
	}
	if len(d.Errors) > 0 {
		msg += fmt.Sprintf(", %d warnings", len(d.Errors))
	}
	return msg
}
