package dates

import (
	"fmt"
	"os"
	"strings"

	"github.com/UnknownOlympus/datemap/internal/models"
)

const (
	lineSeparator  = "\n"
	fieldSeparator = ","
)

// Parse converts raw CSV text into date records.
//
// The first line is always the header row. Header names and cell values are trimmed.
// Rows shorter than the header get empty strings for the missing trailing cells, extra
// cells are ignored. Quoting is not supported: a comma always separates fields.
// Empty input yields an empty, non-nil slice.
func Parse(text string) []models.DateRecord {
	records := []models.DateRecord{}

	text = strings.TrimSpace(text)
	if text == "" {
		return records
	}

	lines := strings.Split(text, lineSeparator)
	headers := splitFields(lines[0])

	for _, line := range lines[1:] {
		values := splitFields(line)
		record := make(models.DateRecord, len(headers))
		for idx, header := range headers {
			value := ""
			if idx < len(values) {
				value = values[idx]
			}
			record[header] = value
		}
		records = append(records, record)
	}

	return records
}

// Load reads the CSV resource at path and parses it.
func Load(path string) ([]models.DateRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dates file: %w", err)
	}

	return Parse(string(data)), nil
}

// Addresses returns the distinct non-blank Address values of records in first-seen order.
func Addresses(records []models.DateRecord) []string {
	seen := make(map[string]bool)
	addresses := []string{}

	for _, record := range records {
		address := record.Address()
		if address == "" || seen[address] {
			continue
		}
		seen[address] = true
		addresses = append(addresses, address)
	}

	return addresses
}

func splitFields(line string) []string {
	fields := strings.Split(line, fieldSeparator)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	return fields
}
