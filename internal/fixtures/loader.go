package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFixture reports a dataset that failed schema validation.
var ErrInvalidFixture = errors.New("fixtures: invalid dataset")

//go:embed data/academy.yaml
var defaultDataset []byte

var validate = validator.New()

// Decode parses and validates a YAML dataset.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidFixture)
		}
		return nil, fmt.Errorf("fixtures: decode: %w", err)
	}
	if err := validate.Struct(&ds); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return nil, fmt.Errorf("%w: %s failed %q (%d problems)", ErrInvalidFixture, first.Namespace(), first.Tag(), len(fieldErrs))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return &ds, nil
}

// LoadFile reads a dataset from a YAML file.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Default returns the embedded sample dataset.
func Default() (*Dataset, error) {
	return Decode(bytes.NewReader(defaultDataset))
}
