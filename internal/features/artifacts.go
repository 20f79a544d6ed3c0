package features

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
)

// Artifact database table names. Both tables live in the single processed
// database written by cmd/prepdata and read by the store and the trainer.
const (
	FeatureTableName = "churn_features"
	ProfileTableName = "customer_profiles"
)

// WriteArtifacts persists the feature table and profile table into the
// artifact database, replacing any previous contents.
func WriteArtifacts(dbPath string, b Built) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("opening artifact database %s: %w", dbPath, err)
	}
	defer db.Close()

	if err := writeFeatureTable(db, b.Features); err != nil {
		return err
	}
	return writeProfileTable(db, b.Profiles)
}

func writeFeatureTable(db *sql.DB, t FeatureTable) error {
	if _, err := db.Exec(`DROP TABLE IF EXISTS ` + FeatureTableName); err != nil {
		return fmt.Errorf("dropping old feature table: %w", err)
	}

	// Feature columns carry dataset category names (spaces, dashes), so every
	// identifier is quoted. Layout mirrors the engineered table contract:
	// feature columns, then label, then customer id.
	var cols []string
	for _, c := range t.Columns {
		cols = append(cols, quoteIdent(c)+" REAL NOT NULL")
	}
	cols = append(cols, quoteIdent(labelColumn)+" INTEGER NOT NULL")
	cols = append(cols, quoteIdent(idColumn)+" TEXT PRIMARY KEY")
	schema := fmt.Sprintf("CREATE TABLE %s (%s)", FeatureTableName, strings.Join(cols, ", "))
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating feature table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var names []string
	for _, c := range t.Columns {
		names = append(names, quoteIdent(c))
	}
	names = append(names, quoteIdent(labelColumn), quoteIdent(idColumn))
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		FeatureTableName, strings.Join(names, ", "), placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		args := make([]any, 0, len(row.Values)+2)
		for _, v := range row.Values {
			args = append(args, v)
		}
		args = append(args, row.Label, row.CustomerID)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting feature row %s: %w", row.CustomerID, err)
		}
	}
	return tx.Commit()
}

func writeProfileTable(db *sql.DB, profiles []domain.CustomerRecord) error {
	if _, err := db.Exec(`DROP TABLE IF EXISTS ` + ProfileTableName); err != nil {
		return fmt.Errorf("dropping old profile table: %w", err)
	}
	schema := `
	CREATE TABLE ` + ProfileTableName + ` (
		"customerID"      TEXT PRIMARY KEY,
		"gender"          TEXT NOT NULL,
		"SeniorCitizen"   INTEGER NOT NULL,
		"Partner"         TEXT NOT NULL,
		"Dependents"      TEXT NOT NULL,
		"tenure"          INTEGER NOT NULL,
		"PhoneService"    TEXT NOT NULL,
		"MultipleLines"   TEXT NOT NULL,
		"InternetService" TEXT NOT NULL,
		"Contract"        TEXT NOT NULL,
		"MonthlyCharges"  TEXT NOT NULL,
		"TotalCharges"    TEXT NOT NULL,
		"PaymentMethod"   TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating profile table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO ` + ProfileTableName + `
		("customerID", "gender", "SeniorCitizen", "Partner", "Dependents", "tenure",
		 "PhoneService", "MultipleLines", "InternetService", "Contract",
		 "MonthlyCharges", "TotalCharges", "PaymentMethod")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range profiles {
		_, err := stmt.Exec(
			p.CustomerID, p.Gender, p.SeniorCitizen, p.Partner, p.Dependents, p.Tenure,
			p.PhoneService, p.MultipleLines, p.InternetService, p.Contract,
			p.MonthlyCharges, p.TotalCharges, p.PaymentMethod,
		)
		if err != nil {
			return fmt.Errorf("inserting profile row %s: %w", p.CustomerID, err)
		}
	}
	return tx.Commit()
}

// ReadFeatureTable loads the engineered feature table in stored column order.
func ReadFeatureTable(dbPath string) (FeatureTable, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return FeatureTable{}, fmt.Errorf("opening artifact database %s: %w", dbPath, err)
	}
	defer db.Close()

	columns, err := tableColumns(db, FeatureTableName)
	if err != nil {
		return FeatureTable{}, err
	}

	var featureCols []string
	for _, c := range columns {
		if c != labelColumn && c != idColumn {
			featureCols = append(featureCols, c)
		}
	}

	var selectCols []string
	for _, c := range featureCols {
		selectCols = append(selectCols, quoteIdent(c))
	}
	selectCols = append(selectCols, quoteIdent(labelColumn), quoteIdent(idColumn))
	rows, err := db.Query(fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid",
		strings.Join(selectCols, ", "), FeatureTableName))
	if err != nil {
		return FeatureTable{}, fmt.Errorf("querying feature table: %w", err)
	}
	defer rows.Close()

	t := FeatureTable{Columns: featureCols}
	for rows.Next() {
		values := make([]float64, len(featureCols))
		dest := make([]any, 0, len(featureCols)+2)
		for i := range values {
			dest = append(dest, &values[i])
		}
		var label int
		var id string
		dest = append(dest, &label, &id)
		if err := rows.Scan(dest...); err != nil {
			return FeatureTable{}, fmt.Errorf("scanning feature row: %w", err)
		}
		t.Rows = append(t.Rows, FeatureRow{CustomerID: id, Values: values, Label: label})
	}
	if err := rows.Err(); err != nil {
		return FeatureTable{}, err
	}
	return t, nil
}

// ReadProfileTable loads every customer profile in stored row order.
func ReadProfileTable(dbPath string) ([]domain.CustomerRecord, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening artifact database %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT "customerID", "gender", "SeniorCitizen", "Partner",
		"Dependents", "tenure", "PhoneService", "MultipleLines", "InternetService",
		"Contract", "MonthlyCharges", "TotalCharges", "PaymentMethod"
		FROM ` + ProfileTableName + ` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying profile table: %w", err)
	}
	defer rows.Close()

	var profiles []domain.CustomerRecord
	for rows.Next() {
		var p domain.CustomerRecord
		err := rows.Scan(
			&p.CustomerID, &p.Gender, &p.SeniorCitizen, &p.Partner, &p.Dependents,
			&p.Tenure, &p.PhoneService, &p.MultipleLines, &p.InternetService,
			&p.Contract, &p.MonthlyCharges, &p.TotalCharges, &p.PaymentMethod,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// HasTable reports whether the artifact database contains the named table.
func HasTable(dbPath, table string) (bool, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return false, err
	}
	defer db.Close()
	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count)
	return count > 0, err
}

func tableColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("reading %s columns: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist in artifact database", table)
	}
	return columns, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
