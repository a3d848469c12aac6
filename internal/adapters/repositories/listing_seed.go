package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// SeedFile is the JSON document loaded by the seed paths:
//
//	{"trips": [...], "parcels": [...]}
//
// Field names follow the listing tables.
type SeedFile struct {
	Trips   []tripRow   `json:"trips"`
	Parcels []parcelRow `json:"parcels"`
}

// Read and validate listing seeds from a JSON file.
func LoadSeedFile(jsonPath string) (*SeedFile, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seeds: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load seeds: parse json: %w", err)
	}

	for i := range data.Trips {
		r := &data.Trips[i]
		if strings.TrimSpace(r.ID) == "" {
			return nil, fmt.Errorf("load seeds: trip at index %d: id cannot be empty", i+1)
		}
		if r.Status == "" {
			r.Status = "open"
		}
		t, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("load seeds: trip at index %d: %w", i+1, err)
		}
		r.DateDeparture = formatDate(t.DateDeparture)
	}

	for i := range data.Parcels {
		r := &data.Parcels[i]
		if strings.TrimSpace(r.ID) == "" {
			return nil, fmt.Errorf("load seeds: parcel at index %d: id cannot be empty", i+1)
		}
		if r.Status == "" {
			r.Status = "open"
		}
		p, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("load seeds: parcel at index %d: %w", i+1, err)
		}
		r.Deadline = formatDate(p.Deadline)
	}

	return &data, nil
}
