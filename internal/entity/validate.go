package entity

import (
	"errors"
	"fmt"
)

// Validate checks a [RawEntity] for required fields.
//
// Rules:
//   - UUID must be non-empty.
//   - Category must be a member of the closed category set.
//   - EntityName must be non-empty ([UnknownName] is allowed).
func Validate(e RawEntity) error {
	var errs []error

	if e.UUID == "" {
		errs = append(errs, errors.New("uuid must not be empty"))
	}

	if !e.Category.IsValid() {
		errs = append(errs, fmt.Errorf("category %d is not a recognised category", int(e.Category)))
	}

	if e.EntityName == "" {
		errs = append(errs, errors.New("entity name must not be empty"))
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
