package models

// Column names observed in the dates CSV.
const (
	ColumnDate      = "Date"
	ColumnLocation  = "Location"
	ColumnNotes     = "Notes"
	ColumnAddress   = "Address"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
)

// DateRecord is one parsed CSV row keyed by header name.
// Reading a column that the row does not carry yields an empty string.
type DateRecord map[string]string

// Date returns the Date column.
func (r DateRecord) Date() string { return r[ColumnDate] }

// Location returns the Location column.
func (r DateRecord) Location() string { return r[ColumnLocation] }

// Notes returns the Notes column.
func (r DateRecord) Notes() string { return r[ColumnNotes] }

// Address returns the Address column.
func (r DateRecord) Address() string { return r[ColumnAddress] }
