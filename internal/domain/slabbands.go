package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// SlabBands is the ordered band list of a slab component, stored as JSONB.
type SlabBands []SlabBand

// Value implements driver.Valuer for JSONB storage.
func (b SlabBands) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (b *SlabBands) Scan(src interface{}) error {
	if src == nil {
		*b = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("slab bands: unsupported scan type %T", src)
	}
	return json.Unmarshal(data, b)
}

// Validate checks that bands are present, closed bands appear in strictly
// increasing order, and only the final band may be open-ended.
func (b SlabBands) Validate() error {
	if len(b) == 0 {
		return errors.New("slab component requires at least one band")
	}
	for i, band := range b {
		if band.Rate.Sign() < 0 {
			return fmt.Errorf("band %d: negative rate", i)
		}
		if band.UpTo == nil {
			if i != len(b)-1 {
				return fmt.Errorf("band %d: only the last band may be open-ended", i)
			}
			continue
		}
		if band.UpTo.Sign() <= 0 {
			return fmt.Errorf("band %d: upper bound must be positive", i)
		}
		if i > 0 && b[i-1].UpTo != nil && !band.UpTo.GreaterThan(*b[i-1].UpTo) {
			return fmt.Errorf("band %d: upper bounds must increase", i)
		}
	}
	return nil
}
