package watch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// ParseRecords decodes a record file. Three shapes are accepted: a single
// record object, an array of records, or {"items": [...]} as returned by
// the list endpoint. Records without a content type default to document.
func ParseRecords(data []byte) ([]domain.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty record file: %w", domain.ErrInvalidInput)
	}

	var records []domain.Record
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode record array: %w", err)
		}
	case '{':
		var wrapper struct {
			Items *[]domain.Record `json:"items"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		if wrapper.Items != nil {
			records = *wrapper.Items
			break
		}
		var single domain.Record
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = []domain.Record{single}
	default:
		return nil, fmt.Errorf("record file must hold a JSON object or array: %w", domain.ErrInvalidInput)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("record file has no records: %w", domain.ErrInvalidInput)
	}
	for i := range records {
		if records[i].ContentType == "" {
			records[i].ContentType = domain.ContentTypeDocument
		}
		if !records[i].ContentType.IsValid() {
			return nil, fmt.Errorf("record %d: content type %q: %w", i, records[i].ContentType, domain.ErrUnsupportedType)
		}
	}
	return records, nil
}
