package dates_test

import (
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/datemap/internal/dates"
	"github.com/UnknownOlympus/datemap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("missing trailing cell maps to empty string", func(t *testing.T) {
		t.Parallel()
		records := dates.Parse("Date,Location\n2024-01-01,Seattle\n2024-01-02,")

		require.Len(t, records, 2)
		assert.Equal(t, models.DateRecord{"Date": "2024-01-01", "Location": "Seattle"}, records[0])
		assert.Equal(t, models.DateRecord{"Date": "2024-01-02", "Location": ""}, records[1])
	})

	t.Run("short row fills every missing column", func(t *testing.T) {
		t.Parallel()
		records := dates.Parse("Date,Location,Notes,Address\n2024-03-08")

		require.Len(t, records, 1)
		assert.Equal(t, "2024-03-08", records[0].Date())
		assert.Empty(t, records[0].Location())
		assert.Empty(t, records[0].Notes())
		assert.Empty(t, records[0].Address())
		assert.Len(t, records[0], 4)
	})

	t.Run("headers and cells are trimmed", func(t *testing.T) {
		t.Parallel()
		records := dates.Parse("  Date , Location \r\n 2024-02-14 ,  Pike Place Market \r\n")

		require.Len(t, records, 1)
		assert.Equal(t, "2024-02-14", records[0]["Date"])
		assert.Equal(t, "Pike Place Market", records[0]["Location"])
	})

	t.Run("extra cells are ignored", func(t *testing.T) {
		t.Parallel()
		records := dates.Parse("Date,Location\n2024-01-01,Seattle,WA,98101")

		require.Len(t, records, 1)
		assert.Equal(t, models.DateRecord{"Date": "2024-01-01", "Location": "Seattle"}, records[0])
	})

	t.Run("embedded commas are not quoted", func(t *testing.T) {
		t.Parallel()
		records := dates.Parse("Date,Address\n2024-01-01,\"123 Main St, Seattle\"")

		require.Len(t, records, 1)
		assert.Equal(t, "\"123 Main St", records[0].Address())
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		records := dates.Parse("  \n\t\n")

		require.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("header only", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, dates.Parse("Date,Location,Notes\n"))
	})

	t.Run("interior blank line yields an empty record", func(t *testing.T) {
		t.Parallel()
		records := dates.Parse("Date,Location\n2024-01-01,Seattle\n\n2024-01-03,Tacoma")

		require.Len(t, records, 3)
		assert.Equal(t, models.DateRecord{"Date": "", "Location": ""}, records[1])
		assert.Equal(t, "Tacoma", records[2].Location())
	})

	t.Run("parsing is idempotent", func(t *testing.T) {
		t.Parallel()
		text := "Date,Location,Notes\n2024-01-01,Seattle,first\n2024-01-02,Bellevue,"

		assert.Equal(t, dates.Parse(text), dates.Parse(text))
	})
}

func TestLoad(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	t.Run("reads and parses file", func(t *testing.T) {
		file := filet.TmpFile(t, dir, "Date,Location\n2024-05-01,Gas Works Park\n")

		records, err := dates.Load(file.Name())

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Gas Works Park", records[0].Location())
	})

	t.Run("missing file", func(t *testing.T) {
		records, err := dates.Load(filepath.Join(dir, "missing.csv"))

		require.Error(t, err)
		assert.Nil(t, records)
		assert.ErrorContains(t, err, "failed to read dates file")
	})
}

func TestAddresses(t *testing.T) {
	t.Parallel()
	records := []models.DateRecord{
		{"Address": "400 Broad St, Seattle, WA"},
		{"Address": ""},
		{"Location": "no address column"},
		{"Address": "85 Pike St, Seattle, WA"},
		{"Address": "400 Broad St, Seattle, WA"},
	}

	addresses := dates.Addresses(records)

	assert.Equal(t, []string{"400 Broad St, Seattle, WA", "85 Pike St, Seattle, WA"}, addresses)
	assert.Empty(t, dates.Addresses(nil))
}
