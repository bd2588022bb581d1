package manifest

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// ErrInvalidTOML is returned when a rewrite would turn a valid TOML document
// into an invalid one
var ErrInvalidTOML = errors.New("rewritten manifest is not valid TOML")

// IsTOML reports whether content decodes as a TOML document.
func IsTOML(content []byte) bool {
	var doc map[string]interface{}
	_, err := toml.Decode(string(content), &doc)
	return err == nil
}

// ValidateRewrite guards a write: when original is valid TOML, updated must be
// too. Templated manifests that never were TOML are not checked.
func ValidateRewrite(original, updated []byte) error {
	if !IsTOML(original) {
		return nil
	}

	var doc map[string]interface{}
	if _, err := toml.Decode(string(updated), &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTOML, err)
	}
	return nil
}
