// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"
)

// Recipe validation errors. Callers classify these with errors.Is.
var (
	ErrInvalidTarget      = errors.New("recipe: invalid target kind")
	ErrEmptyInputs        = errors.New("recipe: inputs must not be empty")
	ErrInvalidInputKind   = errors.New("recipe: invalid input kind")
	ErrDuplicateInputKind = errors.New("recipe: duplicate input kind")
	ErrZeroAmount         = errors.New("recipe: input amount must be at least 1")
	ErrSelfReferential    = errors.New("recipe: target kind appears among its own inputs")
)

// RecipeInput is one requirement of a recipe: exactly Amount tokens of
// Kind.
type RecipeInput struct {
	Kind   Kind   `json:"kind"`
	Amount uint32 `json:"amount"`
}

// Coin is an opaque payment reference attached to a recipe. The
// registry records it and reports it but never settles it.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Recipe maps a multiset of input kinds to one output kind. At most one
// recipe exists per Target.
type Recipe struct {
	Target Kind          `json:"target"`
	Inputs []RecipeInput `json:"inputs"`
	Cost   *Coin         `json:"cost,omitempty"`
}

// Validate checks the structural rules: a valid target, a non-empty
// input list of valid kinds with no duplicates, every amount at least
// one, and no input equal to the target.
func (r *Recipe) Validate() error {
	if !r.Target.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidTarget, uint8(r.Target))
	}
	if len(r.Inputs) == 0 {
		return ErrEmptyInputs
	}
	var seen [KindCount]bool
	for i, input := range r.Inputs {
		if !input.Kind.IsValid() {
			return fmt.Errorf("%w: inputs[%d] = %d", ErrInvalidInputKind, i, uint8(input.Kind))
		}
		if input.Kind == r.Target {
			return fmt.Errorf("%w: %s", ErrSelfReferential, r.Target)
		}
		if seen[input.Kind] {
			return fmt.Errorf("%w: %s", ErrDuplicateInputKind, input.Kind)
		}
		seen[input.Kind] = true
		if input.Amount == 0 {
			return fmt.Errorf("%w: %s", ErrZeroAmount, input.Kind)
		}
	}
	return nil
}

// Required returns the exact count required per kind, indexed by the
// kind's ordinal. Kinds outside the recipe have a requirement of zero.
func (r *Recipe) Required() [KindCount]uint32 {
	var required [KindCount]uint32
	for _, input := range r.Inputs {
		required[input.Kind] = input.Amount
	}
	return required
}

// TotalInputs returns the number of tokens one synthesis consumes.
func (r *Recipe) TotalInputs() int {
	total := 0
	for _, input := range r.Inputs {
		total += int(input.Amount)
	}
	return total
}

// DefaultRecipes returns the launch recipe table: each tier upgrades
// from the tier directly below it.
func DefaultRecipes() []Recipe {
	return []Recipe{
		{Target: Firefly, Inputs: []RecipeInput{{Kind: Clover, Amount: 2}}},
		{Target: CrimsonKoi, Inputs: []RecipeInput{{Kind: Firefly, Amount: 2}}},
		{Target: MagicalLamp, Inputs: []RecipeInput{{Kind: CrimsonKoi, Amount: 5}}},
		{Target: FatesSpindle, Inputs: []RecipeInput{{Kind: MagicalLamp, Amount: 10}}},
		{Target: Sage, Inputs: []RecipeInput{{Kind: FatesSpindle, Amount: 10}}},
		{Target: Polaris, Inputs: []RecipeInput{{Kind: Sage, Amount: 10}}},
		{Target: WheelOfDestiny, Inputs: []RecipeInput{{Kind: Polaris, Amount: 10}}},
		{Target: Genesis, Inputs: []RecipeInput{{Kind: WheelOfDestiny, Amount: 10}}},
	}
}
