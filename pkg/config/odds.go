package config

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/turtlerace/pkg/model"
)

type (
	oddsFile struct {
		Odds []oddsFileEntry `yaml:"odds"`
	}
	oddsFileEntry struct {
		Color      string `yaml:"color"`
		Multiplier string `yaml:"multiplier"`
	}
)

// LoadOdds reads the odds table from path. An empty path returns the default odds.
func LoadOdds(path string) (*model.OddsTable, error) {
	if path == "" {
		return model.DefaultOdds(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ret, err := ReadOdds(f)
	if err != nil {
		return nil, fmt.Errorf("odds file %s: %w", path, err)
	}
	return ret, nil
}

// ReadOdds parses the yaml representation of an odds table.
// The order of the entries defines the racer order.
func ReadOdds(r io.Reader) (*model.OddsTable, error) {
	var data oddsFile
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		return nil, err
	}
	entries := make([]model.OddsEntry, 0, len(data.Odds))
	for _, e := range data.Odds {
		m, err := decimal.NewFromString(e.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("%w: multiplier %q for %s: %w",
				model.ErrInvalidOdds, e.Multiplier, e.Color, err)
		}
		entries = append(entries, model.OddsEntry{Color: model.Color(e.Color), Multiplier: m})
	}
	return model.NewOddsTable(entries)
}
