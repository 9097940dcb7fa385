package decode

import (
	"gopkg.in/yaml.v3"

	"canopy/pkg/domain"
)

func decodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &domain.FormatError{Format: FormatYAML, Err: err}
	}
	return v, nil
}
