// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"

	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// checkRecipe validates a recipe for storage.
func (v *View) checkRecipe(recipe *schema.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return recipeError(err)
	}
	if total := recipe.TotalInputs(); total > v.limits.MaxSynthesisInputs {
		return newError(CodeLimitExceeded, "recipe for %s consumes %d tokens, maximum is %d",
			recipe.Target, total, v.limits.MaxSynthesisInputs)
	}
	if recipe.Cost != nil && (recipe.Cost.Denom == "" || recipe.Cost.Amount == "") {
		return newError(CodeInvalidRecipe, "recipe cost requires denom and amount")
	}
	return nil
}

// SetRecipe installs recipe for its target kind, replacing any
// existing one.
func (r *Registry) SetRecipe(caller ref.Address, recipe schema.Recipe) error {
	if _, err := r.requireAdmin(caller, true); err != nil {
		return err
	}
	if err := r.checkRecipe(&recipe); err != nil {
		return err
	}
	if err := r.save(recipeKey(recipe.Target), recipe); err != nil {
		return err
	}
	r.logger.Info("recipe set", "target", recipe.Target, "inputs", len(recipe.Inputs))
	r.emit(Event{Type: EventSetRecipe, Caller: caller, Kind: kindPtr(recipe.Target)})
	return nil
}

// RemoveRecipe deletes the recipe for target.
func (r *Registry) RemoveRecipe(caller ref.Address, target schema.Kind) error {
	if _, err := r.requireAdmin(caller, true); err != nil {
		return err
	}
	if _, err := r.Recipe(target); err != nil {
		return err
	}
	if err := r.store.Delete(recipeKey(target)); err != nil {
		return err
	}
	r.logger.Info("recipe removed", "target", target)
	r.emit(Event{Type: EventRemoveRecipe, Caller: caller, Kind: kindPtr(target)})
	return nil
}

// Recipe returns the recipe producing target.
func (v *View) Recipe(target schema.Kind) (schema.Recipe, error) {
	if !target.IsValid() {
		return schema.Recipe{}, newError(CodeInvalidInput, "invalid kind %d", uint8(target))
	}
	var recipe schema.Recipe
	err := v.load(recipeKey(target), &recipe)
	if errors.Is(err, kvstore.ErrNotFound) {
		return schema.Recipe{}, newError(CodeNotFound, "no recipe for %s", target)
	}
	return recipe, err
}

// AllRecipes lists recipes in ascending target order, starting after
// startAfter when it is non-nil.
func (v *View) AllRecipes(startAfter *schema.Kind, limit uint32) ([]schema.Recipe, error) {
	var start []byte
	if startAfter != nil {
		if *startAfter >= schema.Genesis {
			return []schema.Recipe{}, nil
		}
		start = recipeKey(*startAfter + 1)
	}
	size := v.pageSize(limit)
	recipes := make([]schema.Recipe, 0, size)
	err := v.reader.Iterate(prefixRecipe, start, func(key, value []byte) error {
		if len(recipes) >= size {
			return kvstore.ErrStop
		}
		var recipe schema.Recipe
		if err := unmarshalValue(key, value, &recipe); err != nil {
			return err
		}
		recipes = append(recipes, recipe)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipes, nil
}
