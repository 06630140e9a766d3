package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/utakatalp/virtual-football/internal/league"
)

// RosterFile is the on-disk roster format:
//
//	teams:
//	  - name: Arsenal
//	    strength: 88
type RosterFile struct {
	Teams []league.Team `yaml:"teams"`
}

func LoadRoster(path string) (*league.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var rf RosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	roster, err := league.NewRoster(rf.Teams)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return roster, nil
}

// SessionOptions resolves the configured variant and roster into league options.
func (c *Config) SessionOptions() (league.Options, error) {
	opts, err := league.Variant(c.Variant)
	if err != nil {
		return league.Options{}, err
	}
	opts.Seed = c.Seed
	if c.RosterPath != "" {
		roster, err := LoadRoster(c.RosterPath)
		if err != nil {
			return league.Options{}, err
		}
		opts.Roster = roster
	}
	return opts, nil
}
