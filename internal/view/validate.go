package view

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/canvasboard/internal/fieldpath"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// ValidateDescriptor checks a descriptor before it is persisted: a name, a
// known source and layout, plus everything ValidateCriteria checks. Errors
// wrap types.ErrValidation.
func ValidateDescriptor(d *types.ViewDescriptor) error {
	if d == nil {
		return fmt.Errorf("%w: view is nil", types.ErrValidation)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: view name is required", types.ErrValidation)
	}
	if !d.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", types.ErrValidation, d.Source)
	}
	if !d.Layout.Valid() {
		return fmt.Errorf("%w: unknown layout %q", types.ErrValidation, d.Layout)
	}
	return ValidateCriteria(d)
}

// ValidateCriteria checks the parts of a descriptor the engine evaluates:
// field paths, filter operators and operands, and sort directions.
func ValidateCriteria(d *types.ViewDescriptor) error {
	if d == nil {
		return fmt.Errorf("%w: view is nil", types.ErrValidation)
	}
	for i, f := range d.Filters {
		if err := validateFilter(f); err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}
	}
	if d.SortBy != "" {
		if err := fieldpath.Validate(d.SortBy); err != nil {
			return fmt.Errorf("sortBy: %w", err)
		}
	}
	if d.SortOrder != "" && !d.SortOrder.Valid() {
		return fmt.Errorf("%w: sort order %q", types.ErrValidation, d.SortOrder)
	}
	for i, s := range d.Sorts {
		if err := fieldpath.Validate(s.Field); err != nil {
			return fmt.Errorf("sort %d: %w", i, err)
		}
		if s.Order != "" && !s.Order.Valid() {
			return fmt.Errorf("sort %d: %w: sort order %q", i, types.ErrValidation, s.Order)
		}
	}
	if d.GroupBy != "" {
		if err := fieldpath.Validate(d.GroupBy); err != nil {
			return fmt.Errorf("groupBy: %w", err)
		}
	}
	for _, f := range d.VisibleFields {
		if err := fieldpath.Validate(f); err != nil {
			return fmt.Errorf("visibleFields: %w", err)
		}
	}
	return nil
}

func validateFilter(f types.FilterCriterion) error {
	if err := fieldpath.Validate(f.Field); err != nil {
		return err
	}
	if !f.Operator.Valid() {
		return fmt.Errorf("%w: unknown operator %q", types.ErrValidation, f.Operator)
	}
	switch f.Operator {
	case types.OpIsEmpty, types.OpIsNotEmpty, types.OpIn, types.OpNotIn:
		return nil
	}
	if f.Value == nil {
		return fmt.Errorf("%w: operator %s needs a value", types.ErrValidation, f.Operator)
	}
	return nil
}
