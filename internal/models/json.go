package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"scamshield/internal/services/risk"
)

// SignalsJSON stores the scoring signals of a transaction as jsonb.
type SignalsJSON risk.Signals

// Value implements the driver.Valuer interface
func (s SignalsJSON) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface
func (s *SignalsJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = SignalsJSON{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into signals", value)
	}
}
