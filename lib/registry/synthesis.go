// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// SynthesisSeriesPrefix starts the series id of every synthesized token.
// The rest is the block time in Unix seconds.
const SynthesisSeriesPrefix = "synthesis_"

// SynthesisSeries returns the series id for tokens synthesized at t.
func SynthesisSeries(t time.Time) string {
	return fmt.Sprintf("%s%d", SynthesisSeriesPrefix, t.Unix())
}

// Preview is the outcome of a synthesis dry run.
type Preview struct {
	CanSynthesize bool   `json:"can_synthesize"`
	Reason        string `json:"reason,omitempty"`
	// Code classifies the failure when CanSynthesize is false.
	Code     Code      `json:"code,omitempty"`
	Mismatch *Mismatch `json:"mismatch,omitempty"`

	// Required is the recipe's input list, when the recipe exists.
	Required []schema.RecipeInput `json:"required,omitempty"`
	// OutputValue is the target kind's exchange value.
	OutputValue uint32       `json:"output_value"`
	Cost        *schema.Coin `json:"cost,omitempty"`
}

// SynthesisRecord is the history entry written by each synthesis.
type SynthesisRecord struct {
	User   ref.Address `json:"user"`
	Target schema.Kind `json:"target"`
	Inputs []uint64    `json:"inputs"`
	Output uint64      `json:"output"`
	Height uint64      `json:"height"`
	Time   uint64      `json:"time"`
}

// synthesisPlan holds everything Synthesize needs after validation.
type synthesisPlan struct {
	recipe  schema.Recipe
	inputs  []uint64
	records []tokenRecord
	metas   []schema.NftMeta
}

// planSynthesis runs every synthesis check without writing. A zero
// caller skips authorization, which only Preview does.
func (v *View) planSynthesis(caller ref.Address, inputs []uint64, target schema.Kind) (*synthesisPlan, error) {
	recipe, err := v.Recipe(target)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, newError(CodeInvalidInput, "no input tokens")
	}
	if len(inputs) > v.limits.MaxSynthesisInputs {
		return nil, newError(CodeLimitExceeded, "%d input tokens, maximum is %d", len(inputs), v.limits.MaxSynthesisInputs)
	}
	sorted := slices.Clone(inputs)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, newError(CodeInvalidInput, "token %d is listed more than once", sorted[i])
		}
	}

	plan := &synthesisPlan{
		recipe:  recipe,
		inputs:  sorted,
		records: make([]tokenRecord, len(sorted)),
		metas:   make([]schema.NftMeta, len(sorted)),
	}
	var supplied [schema.KindCount]uint32
	for i, id := range sorted {
		if caller.IsZero() {
			plan.records[i], err = v.token(id)
		} else {
			plan.records[i], err = v.spendable(caller, id)
		}
		if err != nil {
			return nil, err
		}
		plan.metas[i], err = v.TokenMeta(id)
		if err != nil {
			return nil, err
		}
		supplied[plan.metas[i].Kind]++
	}

	if mismatch := matchRecipe(&recipe, &supplied); mismatch != nil {
		return nil, &Error{
			Code:     CodeInvalidRecipe,
			Message:  fmt.Sprintf("inputs do not match the %s recipe: %s", target, mismatch),
			Mismatch: mismatch,
		}
	}
	return plan, nil
}

// matchRecipe compares supplied counts against the recipe. It reports
// the first recipe kind whose count differs, in recipe order, then the
// first extra kind in rarity order.
func matchRecipe(recipe *schema.Recipe, supplied *[schema.KindCount]uint32) *Mismatch {
	required := recipe.Required()
	for _, input := range recipe.Inputs {
		if supplied[input.Kind] != input.Amount {
			return &Mismatch{Kind: input.Kind, Expected: input.Amount, Actual: supplied[input.Kind]}
		}
	}
	for _, kind := range schema.AllKinds() {
		if required[kind] == 0 && supplied[kind] > 0 {
			return &Mismatch{Kind: kind, Expected: 0, Actual: supplied[kind]}
		}
	}
	return nil
}

// PreviewSynthesis reports whether Synthesize would succeed, without
// writing. A zero caller skips ownership checks. Validation failures
// are reported in the Preview; only storage failures return an error.
func (v *View) PreviewSynthesis(caller ref.Address, inputs []uint64, target schema.Kind) (Preview, error) {
	var preview Preview
	if target.IsValid() {
		preview.OutputValue = target.ExchangeValue()
	}
	if recipe, err := v.Recipe(target); err == nil {
		preview.Required = recipe.Inputs
		preview.Cost = recipe.Cost
	}

	_, err := v.planSynthesis(caller, inputs, target)
	if err == nil {
		config, err := v.Config()
		if err != nil {
			return Preview{}, err
		}
		if config.Paused {
			preview.Code = CodePaused
			preview.Reason = "contract is paused"
			return preview, nil
		}
		preview.CanSynthesize = true
		return preview, nil
	}
	var registryErr *Error
	if !errors.As(err, &registryErr) {
		return Preview{}, err
	}
	preview.Code = registryErr.Code
	preview.Reason = registryErr.Message
	preview.Mismatch = registryErr.Mismatch
	return preview, nil
}

// Synthesize burns inputs that exactly satisfy the recipe for target
// and mints one token of target to caller. It returns the new token id.
func (r *Registry) Synthesize(caller ref.Address, inputs []uint64, target schema.Kind) (uint64, error) {
	if _, err := r.requireActive(); err != nil {
		return 0, err
	}
	if caller.IsZero() {
		return 0, newError(CodeUnauthorized, "synthesis requires a caller")
	}
	plan, err := r.planSynthesis(caller, inputs, target)
	if err != nil {
		return 0, err
	}

	outputID, err := r.counter(keyNextTokenID)
	if err != nil {
		return 0, err
	}
	outputID = max(outputID, 1)
	if outputID == ^uint64(0) {
		return 0, newError(CodeLimitExceeded, "token id space exhausted")
	}
	series := SynthesisSeries(r.env.Time)
	serials := make(map[string]uint64, 1)
	serial, err := r.reserveSerial(serials, series)
	if err != nil {
		return 0, err
	}
	output := schema.NftMeta{
		Kind:           target,
		ScaleOrigin:    schema.Tiny,
		CraftedFrom:    plan.inputs,
		SeriesID:       series,
		SerialInSeries: uint32(serial),
	}

	for i, id := range plan.inputs {
		if err := r.destroyToken(id, &plan.records[i], &plan.metas[i]); err != nil {
			return 0, err
		}
	}
	if err := r.createToken(outputID, caller, &output); err != nil {
		return 0, err
	}
	if err := r.commitSerials(serials); err != nil {
		return 0, err
	}
	if err := r.setCounter(keyNextTokenID, outputID+1); err != nil {
		return 0, err
	}
	record := SynthesisRecord{
		User:   caller,
		Target: target,
		Inputs: plan.inputs,
		Output: outputID,
		Height: r.env.Height,
		Time:   unixSeconds(r.env.Time),
	}
	if err := r.save(historyKey(caller, outputID), record); err != nil {
		return 0, err
	}

	r.logger.Debug("tokens synthesized",
		"caller", caller,
		"target", target,
		"inputs", len(plan.inputs),
		"output", outputID,
	)
	r.emit(Event{
		Type:     EventSynthesize,
		Caller:   caller,
		TokenIDs: []uint64{outputID},
		Kind:     kindPtr(target),
		Owner:    caller,
		Inputs:   plan.inputs,
		Output:   outputID,
		Series:   series,
	})
	return outputID, nil
}

func unixSeconds(t time.Time) uint64 {
	if t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix())
}

// SynthesisHistory lists caller's synthesis records in ascending output
// id order, starting after the output id startAfter when non-nil.
func (v *View) SynthesisHistory(caller ref.Address, startAfter *uint64, limit uint32) ([]SynthesisRecord, error) {
	prefix := historyPrefix(caller)
	var start []byte
	if startAfter != nil {
		start = afterID(prefix, *startAfter)
		if start == nil {
			return []SynthesisRecord{}, nil
		}
	}
	size := v.pageSize(limit)
	history := make([]SynthesisRecord, 0, size)
	err := v.reader.Iterate(prefix, start, func(key, value []byte) error {
		if len(history) >= size {
			return kvstore.ErrStop
		}
		var record SynthesisRecord
		if err := unmarshalValue(key, value, &record); err != nil {
			return err
		}
		history = append(history, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}
