package geocoding

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/datemap/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the matched place and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Place, error)
}

// ErrNoResults is wrapped by every provider error that means the lookup succeeded
// but matched nothing.
var ErrNoResults = errors.New("no geocoding results")
