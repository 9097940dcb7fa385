package decode

import (
	"encoding/json"

	"canopy/pkg/domain"
)

func decodeJSON(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &domain.FormatError{Format: FormatJSON, Err: err}
	}
	return v, nil
}
