package translate

import (
	"fmt"

	"github.com/biter777/countries"
)

// UnknownCountryError is returned when a country name has no ISO3 code.
type UnknownCountryError struct {
	Name string
}

func (e *UnknownCountryError) Error() string {
	return fmt.Sprintf("translate: no ISO3 code for country %q", e.Name)
}

// Alpha3 returns the ISO 3166-1 alpha-3 code for a country name. Matching is
// case-insensitive and ignores spaces and punctuation.
func Alpha3(name string) (string, error) {
	code := countries.ByName(name)
	if code == countries.Unknown || !code.IsValid() {
		return "", &UnknownCountryError{Name: name}
	}
	return code.Alpha3(), nil
}
