// Package features turns the raw Telco customer CSV into the two persisted
// tables the serving path reads: a model-ready feature table and a less
// transformed customer profile table.
package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
)

// numericFields pass through unchanged; categoricalFields are expanded into
// one indicator column per observed category, named <field>_<category>.
// The resulting column order (numeric first, then each categorical field's
// categories sorted) is what the trainer captures as the feature schema.
var (
	numericFields     = []string{"tenure", "MonthlyCharges", "TotalCharges"}
	categoricalFields = []string{"Contract", "InternetService", "PaymentMethod"}
)

const (
	labelColumn = "ChurnLabel"
	idColumn    = "customerID"
)

// RawRow is one raw CSV record keyed by header name.
type RawRow map[string]string

// FeatureRow is one engineered row: values aligned to FeatureTable.Columns.
type FeatureRow struct {
	CustomerID string
	Values     []float64
	Label      int
}

// FeatureTable is the engineered feature table in column order.
type FeatureTable struct {
	Columns []string
	Rows    []FeatureRow
}

// Built holds both artifacts produced from one raw dataset. The profile table
// keeps every raw row; the feature table excludes rows dropped by the
// total-charges filter, so the two row sets are not guaranteed to match.
type Built struct {
	Features FeatureTable
	Profiles []domain.CustomerRecord
	Dropped  int
}

// ReadRawCSV loads the raw customer dataset as header-keyed rows.
func ReadRawCSV(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening raw dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading raw dataset header: %w", err)
	}

	var rows []RawRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading raw dataset row %d: %w", len(rows)+2, err)
		}
		row := make(RawRow, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[strings.TrimSpace(name)] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("raw dataset %s has no data rows", path)
	}
	return rows, nil
}

// Build derives the feature table and profile table from raw rows.
//
// Rows whose TotalCharges is blank or unparseable are excluded from the
// feature table: short-tenure customers can have a blank total charge, and
// imputing zero would bias the model toward zero-charge churners. Those rows
// still appear in the profile table.
func Build(raw []RawRow) (Built, error) {
	if err := checkRequiredColumns(raw[0]); err != nil {
		return Built{}, err
	}

	columns := featureColumns(raw)

	var out Built
	out.Features.Columns = columns
	colIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		colIndex[c] = i
	}

	for i, row := range raw {
		profile, err := profileRecord(row)
		if err != nil {
			return Built{}, fmt.Errorf("row %d (%s): %w", i+1, row[idColumn], err)
		}
		out.Profiles = append(out.Profiles, profile)

		total, err := strconv.ParseFloat(strings.TrimSpace(row["TotalCharges"]), 64)
		if err != nil {
			out.Dropped++
			continue
		}

		values := make([]float64, len(columns))
		for _, name := range numericFields {
			if name == "TotalCharges" {
				values[colIndex[name]] = total
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[name]), 64)
			if err != nil {
				return Built{}, fmt.Errorf("row %d (%s): parsing %s %q: %w", i+1, row[idColumn], name, row[name], err)
			}
			values[colIndex[name]] = v
		}
		for _, field := range categoricalFields {
			indicator := field + "_" + row[field]
			if j, ok := colIndex[indicator]; ok {
				values[j] = 1
			}
		}

		label := 0
		if row["Churn"] == "Yes" {
			label = 1
		}
		out.Features.Rows = append(out.Features.Rows, FeatureRow{
			CustomerID: row[idColumn],
			Values:     values,
			Label:      label,
		})
	}

	return out, nil
}

// featureColumns returns the deterministic engineered column order: numeric
// fields first, then each categorical field's observed categories sorted.
func featureColumns(raw []RawRow) []string {
	columns := append([]string{}, numericFields...)
	for _, field := range categoricalFields {
		seen := make(map[string]bool)
		for _, row := range raw {
			seen[row[field]] = true
		}
		categories := make([]string, 0, len(seen))
		for c := range seen {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			columns = append(columns, field+"_"+c)
		}
	}
	return columns
}

func checkRequiredColumns(row RawRow) error {
	required := []string{idColumn, "Churn", "gender", "SeniorCitizen", "Partner", "Dependents",
		"PhoneService", "MultipleLines"}
	required = append(required, numericFields...)
	required = append(required, categoricalFields...)
	for _, name := range required {
		if _, ok := row[name]; !ok {
			return fmt.Errorf("raw dataset is missing required column %q", name)
		}
	}
	return nil
}

func profileRecord(row RawRow) (domain.CustomerRecord, error) {
	tenure, err := strconv.Atoi(strings.TrimSpace(row["tenure"]))
	if err != nil {
		return domain.CustomerRecord{}, fmt.Errorf("parsing tenure %q: %w", row["tenure"], err)
	}
	senior, err := strconv.Atoi(strings.TrimSpace(row["SeniorCitizen"]))
	if err != nil {
		return domain.CustomerRecord{}, fmt.Errorf("parsing SeniorCitizen %q: %w", row["SeniorCitizen"], err)
	}
	return domain.CustomerRecord{
		CustomerID:      row[idColumn],
		Gender:          row["gender"],
		SeniorCitizen:   senior,
		Partner:         row["Partner"],
		Dependents:      row["Dependents"],
		Tenure:          tenure,
		PhoneService:    row["PhoneService"],
		MultipleLines:   row["MultipleLines"],
		InternetService: row["InternetService"],
		Contract:        row["Contract"],
		MonthlyCharges:  row["MonthlyCharges"],
		TotalCharges:    row["TotalCharges"],
		PaymentMethod:   row["PaymentMethod"],
	}, nil
}
