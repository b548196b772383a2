package projects

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/domain"
)

// MixStore serves precomputed energy-mix reference series (hourly solar,
// wind, battery and consumption columns) from JSON files.
type MixStore struct {
	dir string
	log zerolog.Logger
}

// NewMixStore creates a mix store backed by the given folder.
func NewMixStore(dir string, log zerolog.Logger) *MixStore {
	return &MixStore{
		dir: dir,
		log: log.With().Str("service", "mix").Logger(),
	}
}

// Get returns the mix series for a mix type (e.g. "balanced").
func (s *MixStore) Get(mixType string) ([]map[string]float64, error) {
	path := filepath.Join(s.dir, mixType+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("mix data for type %s: %w", mixType, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read mix data: %w", err)
	}

	var mix []map[string]float64
	if err := json.Unmarshal(data, &mix); err != nil {
		return nil, fmt.Errorf("invalid mix data format: %w", err)
	}

	s.log.Debug().Str("type", mixType).Int("records", len(mix)).Msg("Mix data loaded")
	return mix, nil
}
