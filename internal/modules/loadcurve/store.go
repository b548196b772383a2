package loadcurve

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/timeseries"
)

// podFilePattern is the naming scheme of the metering export files,
// one CSV per point of delivery.
const podFilePattern = "LU_ENO_DELPHI_LU_virtual_ind_%s.csv"

// Store reads household consumption profiles from per-POD CSV files.
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates a load curve store backed by the given folder.
func NewStore(dir string, log zerolog.Logger) *Store {
	return &Store{
		dir: dir,
		log: log.With().Str("service", "loadcurve").Logger(),
	}
}

// LoadProfile reads the full consumption curve for a POD. Rows with
// unparsable timestamps or values are skipped, matching the tolerant
// behaviour expected of raw metering exports.
func (s *Store) LoadProfile(pod string) (timeseries.Series, error) {
	path := filepath.Join(s.dir, fmt.Sprintf(podFilePattern, pod))

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("load curve for POD %s: %w", pod, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open load curve: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	// Skip header row
	if _, err := reader.Read(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read load curve header: %w", err)
	}

	var series timeseries.Series
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read load curve row: %w", err)
		}
		if len(row) < 2 {
			skipped++
			continue
		}

		ts, err := timeseries.ParseTimestamp(row[0])
		if err != nil {
			skipped++
			continue
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			skipped++
			continue
		}

		series = append(series, timeseries.Sample{Timestamp: ts, Value: value})
	}

	if skipped > 0 {
		s.log.Warn().
			Str("pod", pod).
			Int("skipped", skipped).
			Msg("Skipped unparsable load curve rows")
	}

	s.log.Debug().
		Str("pod", pod).
		Int("samples", len(series)).
		Msg("Load curve loaded")

	return series, nil
}
