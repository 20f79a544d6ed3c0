// Package store is the serve-time data access layer: it lazily loads the
// offline-produced artifacts (feature table, profile table, fitted model,
// feature schema) and answers customer lookups and churn scoring.
package store

import (
	"math/rand"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/features"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/model"
)

// Producing steps named in ArtifactMissingError messages.
const (
	prepStep  = "cmd/prepdata"
	trainStep = "cmd/trainmodel"
)

// Paths locates the persisted artifacts the store serves from.
type Paths struct {
	ArtifactDB     string
	Model          string
	FeatureColumns string
}

// Store serves customer lookups and churn scoring from persisted artifacts.
// Each artifact is loaded at most once per process; concurrent first-touch
// loads are serialized, and everything is read-only after load.
type Store struct {
	paths Paths

	group singleflight.Group

	mu       sync.RWMutex
	feats    *featureCache
	profiles *profileCache
	mdl      *model.Model
	schema   []string

	rndMu sync.Mutex
	rnd   *rand.Rand
}

type featureCache struct {
	table features.FeatureTable
	byID  map[string]int
}

type profileCache struct {
	records []domain.CustomerRecord
	byID    map[string]int
}

// New returns a Store reading from the given artifact paths.
func New(paths Paths) *Store {
	return &Store{
		paths: paths,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedRandom makes SampleRandomCustomerID deterministic. Intended for tests.
func (s *Store) SeedRandom(seed int64) {
	s.rndMu.Lock()
	s.rnd = rand.New(rand.NewSource(seed))
	s.rndMu.Unlock()
}

// ListCustomerIDs returns every customer id known to the feature table, in
// table row order.
func (s *Store) ListCustomerIDs() ([]string, error) {
	feats, err := s.ensureFeatures()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(feats.table.Rows))
	for i, row := range feats.table.Rows {
		ids[i] = row.CustomerID
	}
	return ids, nil
}

// GetCustomerProfile returns the profile row for one customer.
func (s *Store) GetCustomerProfile(customerID string) (domain.CustomerRecord, error) {
	profiles, err := s.ensureProfiles()
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	i, ok := profiles.byID[customerID]
	if !ok {
		return domain.CustomerRecord{}, &CustomerNotFoundError{CustomerID: customerID, Table: features.ProfileTableName}
	}
	return profiles.records[i], nil
}

// PredictChurnProbability scores one customer with the fitted model, selecting
// feature columns in persisted schema order.
func (s *Store) PredictChurnProbability(customerID string) (float64, error) {
	feats, err := s.ensureFeatures()
	if err != nil {
		return 0, err
	}
	schema, err := s.ensureSchema()
	if err != nil {
		return 0, err
	}
	mdl, err := s.ensureModel()
	if err != nil {
		return 0, err
	}
	if mdl.SchemaHash != "" && mdl.SchemaHash != model.SchemaHash(schema) {
		return 0, &SchemaMismatchError{Detail: "model schema hash does not match " + s.paths.FeatureColumns +
			"; the model was fit against a different feature schema"}
	}

	i, ok := feats.byID[customerID]
	if !ok {
		return 0, &CustomerNotFoundError{CustomerID: customerID, Table: features.FeatureTableName}
	}
	row := feats.table.Rows[i]

	colIndex := make(map[string]int, len(feats.table.Columns))
	for j, c := range feats.table.Columns {
		colIndex[c] = j
	}
	vector := make([]float64, len(schema))
	for j, col := range schema {
		k, ok := colIndex[col]
		if !ok {
			return 0, &SchemaMismatchError{Detail: "feature table has no column " + col}
		}
		vector[j] = row.Values[k]
	}

	prob, err := mdl.PredictProba(vector)
	if err != nil {
		return 0, &SchemaMismatchError{Detail: err.Error()}
	}
	return prob, nil
}

// SampleRandomCustomerID picks a uniformly random known customer id.
func (s *Store) SampleRandomCustomerID() (string, error) {
	ids, err := s.ListCustomerIDs()
	if err != nil {
		return "", err
	}
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return ids[s.rnd.Intn(len(ids))], nil
}

func (s *Store) ensureFeatures() (*featureCache, error) {
	s.mu.RLock()
	cached := s.feats
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := s.group.Do("features", func() (any, error) {
		s.mu.RLock()
		if s.feats != nil {
			defer s.mu.RUnlock()
			return s.feats, nil
		}
		s.mu.RUnlock()

		if err := s.checkArtifactDB(features.FeatureTableName); err != nil {
			return nil, err
		}
		table, err := features.ReadFeatureTable(s.paths.ArtifactDB)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]int, len(table.Rows))
		for i, row := range table.Rows {
			byID[row.CustomerID] = i
		}
		fc := &featureCache{table: table, byID: byID}

		s.mu.Lock()
		s.feats = fc
		s.mu.Unlock()
		return fc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*featureCache), nil
}

func (s *Store) ensureProfiles() (*profileCache, error) {
	s.mu.RLock()
	cached := s.profiles
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := s.group.Do("profiles", func() (any, error) {
		s.mu.RLock()
		if s.profiles != nil {
			defer s.mu.RUnlock()
			return s.profiles, nil
		}
		s.mu.RUnlock()

		if err := s.checkArtifactDB(features.ProfileTableName); err != nil {
			return nil, err
		}
		records, err := features.ReadProfileTable(s.paths.ArtifactDB)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]int, len(records))
		for i, p := range records {
			byID[p.CustomerID] = i
		}
		pc := &profileCache{records: records, byID: byID}

		s.mu.Lock()
		s.profiles = pc
		s.mu.Unlock()
		return pc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*profileCache), nil
}

func (s *Store) ensureModel() (*model.Model, error) {
	s.mu.RLock()
	cached := s.mdl
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := s.group.Do("model", func() (any, error) {
		s.mu.RLock()
		if s.mdl != nil {
			defer s.mu.RUnlock()
			return s.mdl, nil
		}
		s.mu.RUnlock()

		if _, err := os.Stat(s.paths.Model); err != nil {
			return nil, &ArtifactMissingError{Path: s.paths.Model, ProducedBy: trainStep}
		}
		mdl, err := model.Load(s.paths.Model)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.mdl = mdl
		s.mu.Unlock()
		return mdl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Model), nil
}

func (s *Store) ensureSchema() ([]string, error) {
	s.mu.RLock()
	cached := s.schema
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := s.group.Do("schema", func() (any, error) {
		s.mu.RLock()
		if s.schema != nil {
			defer s.mu.RUnlock()
			return s.schema, nil
		}
		s.mu.RUnlock()

		if _, err := os.Stat(s.paths.FeatureColumns); err != nil {
			return nil, &ArtifactMissingError{Path: s.paths.FeatureColumns, ProducedBy: trainStep}
		}
		schema, err := model.LoadSchema(s.paths.FeatureColumns)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.schema = schema
		s.mu.Unlock()
		return schema, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (s *Store) checkArtifactDB(table string) error {
	if _, err := os.Stat(s.paths.ArtifactDB); err != nil {
		return &ArtifactMissingError{Path: s.paths.ArtifactDB, ProducedBy: prepStep}
	}
	ok, err := features.HasTable(s.paths.ArtifactDB, table)
	if err != nil {
		return err
	}
	if !ok {
		return &ArtifactMissingError{Path: s.paths.ArtifactDB + "#" + table, ProducedBy: prepStep}
	}
	return nil
}
