package store

import "fmt"

// ArtifactMissingError reports an absent persisted artifact. Retrying cannot
// succeed until the named producing step regenerates it.
type ArtifactMissingError struct {
	Path       string
	ProducedBy string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("artifact %s is missing; run %s to produce it", e.Path, e.ProducedBy)
}

// CustomerNotFoundError reports a customer id absent from the queried table.
type CustomerNotFoundError struct {
	CustomerID string
	Table      string
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %s not found in %s", e.CustomerID, e.Table)
}

// SchemaMismatchError reports a divergence between the persisted feature
// schema and what is available at inference time. It indicates a stale model
// or a regenerated feature table; there is no automatic reconciliation.
type SchemaMismatchError struct {
	Detail string
}

func (e *SchemaMismatchError) Error() string {
	return "feature schema mismatch: " + e.Detail
}
