// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"bytes"
	"errors"
	"strings"

	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
	"github.com/luckee-foundation/luckee/lib/version"
)

// maxBaseURILength bounds UpdateBaseURI input.
const maxBaseURILength = 512

// Config is the persisted contract-level state owned by AdminControl.
type Config struct {
	Name    string      `json:"name"`
	Symbol  string      `json:"symbol"`
	Admin   ref.Address `json:"admin"`
	Minter  ref.Address `json:"minter"`
	BaseURI string      `json:"base_uri,omitempty"`
	Paused  bool        `json:"paused"`
	Version string      `json:"version"`
}

// InstantiateParams configures a new registry.
type InstantiateParams struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	// Admin defaults to the instantiating caller.
	Admin ref.Address `json:"admin,omitzero"`
	// Minter is the primary minter. Defaults to Admin.
	Minter  ref.Address `json:"minter,omitzero"`
	BaseURI string      `json:"base_uri,omitempty"`
	// SeedDefaultRecipes installs schema.DefaultRecipes.
	SeedDefaultRecipes bool `json:"seed_default_recipes,omitempty"`
	// Version defaults to version.Short().
	Version string `json:"version,omitempty"`
}

// MigrateResult reports the contract version change made by Migrate.
type MigrateResult struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Instantiate initializes an empty store. It fails already_exists if
// the store has been instantiated before.
func (r *Registry) Instantiate(caller ref.Address, params InstantiateParams) error {
	if caller.IsZero() {
		return newError(CodeInvalidInput, "instantiate requires a caller")
	}
	exists, err := r.has(keyConfig)
	if err != nil {
		return err
	}
	if exists {
		return newError(CodeAlreadyExists, "registry is already instantiated")
	}
	if strings.TrimSpace(params.Name) == "" || strings.TrimSpace(params.Symbol) == "" {
		return newError(CodeInvalidInput, "name and symbol are required")
	}
	baseURI, err := normalizeBaseURI(params.BaseURI)
	if err != nil {
		return err
	}

	config := Config{
		Name:    params.Name,
		Symbol:  params.Symbol,
		Admin:   params.Admin,
		Minter:  params.Minter,
		BaseURI: baseURI,
		Version: params.Version,
	}
	if config.Admin.IsZero() {
		config.Admin = caller
	}
	if config.Minter.IsZero() {
		config.Minter = config.Admin
	}
	if config.Version == "" {
		config.Version = version.Short()
	}

	var recipes []schema.Recipe
	if params.SeedDefaultRecipes {
		recipes = schema.DefaultRecipes()
		for i := range recipes {
			if err := r.checkRecipe(&recipes[i]); err != nil {
				return err
			}
		}
	}

	if err := r.save(keyConfig, config); err != nil {
		return err
	}
	if err := r.setCounter(keyNextTokenID, 1); err != nil {
		return err
	}
	if err := r.setCounter(keySupply, 0); err != nil {
		return err
	}
	for _, recipe := range recipes {
		if err := r.save(recipeKey(recipe.Target), recipe); err != nil {
			return err
		}
	}

	r.logger.Info("registry instantiated",
		"name", config.Name,
		"admin", config.Admin,
		"minter", config.Minter,
		"version", config.Version,
		"recipes", len(recipes),
	)
	r.emit(Event{Type: EventInstantiate, Caller: caller, Owner: config.Admin, Minter: config.Minter})
	return nil
}

// Config returns the contract configuration.
func (v *View) Config() (Config, error) {
	var config Config
	err := v.load(keyConfig, &config)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Config{}, newError(CodeNotFound, "registry is not instantiated")
	}
	return config, err
}

// requireActive loads the configuration and fails paused while the
// contract is paused.
func (r *Registry) requireActive() (Config, error) {
	config, err := r.Config()
	if err != nil {
		return Config{}, err
	}
	if config.Paused {
		return Config{}, newError(CodePaused, "contract is paused")
	}
	return config, nil
}

// requireAdmin loads the configuration and fails unauthorized unless
// caller is the admin. When active is set it also fails while paused.
func (r *Registry) requireAdmin(caller ref.Address, active bool) (Config, error) {
	var (
		config Config
		err    error
	)
	if active {
		config, err = r.requireActive()
	} else {
		config, err = r.Config()
	}
	if err != nil {
		return Config{}, err
	}
	if caller != config.Admin {
		return Config{}, newError(CodeUnauthorized, "%s is not the admin", caller)
	}
	return config, nil
}

// SetMinter adds address to, or removes it from, the minter allow-list.
func (r *Registry) SetMinter(caller, address ref.Address, allowed bool) error {
	if _, err := r.requireAdmin(caller, true); err != nil {
		return err
	}
	if address.IsZero() {
		return newError(CodeInvalidInput, "minter address is required")
	}
	var err error
	if allowed {
		err = r.store.Set(minterKey(address), present)
	} else {
		err = r.store.Delete(minterKey(address))
	}
	if err != nil {
		return err
	}
	r.logger.Info("minter allow-list changed", "minter", address, "allowed", allowed)
	r.emit(Event{Type: EventSetMinter, Caller: caller, Minter: address, Allowed: &allowed})
	return nil
}

// UpdateMinter replaces the primary minter.
func (r *Registry) UpdateMinter(caller, minter ref.Address) error {
	config, err := r.requireAdmin(caller, true)
	if err != nil {
		return err
	}
	if minter.IsZero() {
		return newError(CodeInvalidInput, "minter address is required")
	}
	config.Minter = minter
	if err := r.save(keyConfig, config); err != nil {
		return err
	}
	r.logger.Info("primary minter updated", "minter", minter)
	r.emit(Event{Type: EventUpdateMinter, Caller: caller, Minter: minter})
	return nil
}

// UpdateAdmin transfers the admin role.
func (r *Registry) UpdateAdmin(caller, admin ref.Address) error {
	config, err := r.requireAdmin(caller, true)
	if err != nil {
		return err
	}
	if admin.IsZero() {
		return newError(CodeInvalidInput, "admin address is required")
	}
	config.Admin = admin
	if err := r.save(keyConfig, config); err != nil {
		return err
	}
	r.logger.Info("admin updated", "previous", caller, "admin", admin)
	r.emit(Event{Type: EventUpdateAdmin, Caller: caller, Owner: admin})
	return nil
}

// UpdateBaseURI sets the prefix TokenURI builds on. An empty uri
// clears it.
func (r *Registry) UpdateBaseURI(caller ref.Address, uri string) error {
	config, err := r.requireAdmin(caller, true)
	if err != nil {
		return err
	}
	normalized, err := normalizeBaseURI(uri)
	if err != nil {
		return err
	}
	config.BaseURI = normalized
	if err := r.save(keyConfig, config); err != nil {
		return err
	}
	r.logger.Info("base uri updated", "base_uri", normalized)
	r.emit(Event{Type: EventUpdateBaseURI, Caller: caller, BaseURI: normalized})
	return nil
}

func normalizeBaseURI(uri string) (string, error) {
	if len(uri) > maxBaseURILength {
		return "", newError(CodeInvalidInput, "base uri is %d bytes, maximum is %d", len(uri), maxBaseURILength)
	}
	if strings.ContainsAny(uri, " \t\r\n") {
		return "", newError(CodeInvalidInput, "base uri contains whitespace")
	}
	return strings.TrimRight(uri, "/"), nil
}

// Pause stops every mutation except Pause, Unpause and Migrate.
func (r *Registry) Pause(caller ref.Address) error {
	return r.setPaused(caller, true)
}

// Unpause resumes normal operation.
func (r *Registry) Unpause(caller ref.Address) error {
	return r.setPaused(caller, false)
}

func (r *Registry) setPaused(caller ref.Address, paused bool) error {
	config, err := r.requireAdmin(caller, false)
	if err != nil {
		return err
	}
	config.Paused = paused
	if err := r.save(keyConfig, config); err != nil {
		return err
	}
	eventType := EventUnpause
	if paused {
		eventType = EventPause
	}
	r.logger.Info("pause state changed", "paused", paused)
	r.emit(Event{Type: eventType, Caller: caller})
	return nil
}

// Migrate records a new contract version. An empty target means the
// running build's version.
func (r *Registry) Migrate(caller ref.Address, target string) (MigrateResult, error) {
	config, err := r.requireAdmin(caller, false)
	if err != nil {
		return MigrateResult{}, err
	}
	if target == "" {
		target = version.Short()
	}
	result := MigrateResult{Previous: config.Version, Current: target}
	config.Version = target
	if err := r.save(keyConfig, config); err != nil {
		return MigrateResult{}, err
	}
	r.logger.Info("registry migrated", "from", result.Previous, "to", result.Current)
	r.emit(Event{Type: EventMigrate, Caller: caller, Version: target})
	return result, nil
}

// IsMinter reports whether address may mint: the primary minter or an
// allow-listed address.
func (v *View) IsMinter(address ref.Address) (bool, error) {
	config, err := v.Config()
	if err != nil {
		return false, err
	}
	if address.IsZero() {
		return false, nil
	}
	if address == config.Minter {
		return true, nil
	}
	return v.has(minterKey(address))
}

// Minters lists the allow-list in ascending address order. The primary
// minter is reported by ContractInfo, not here.
func (v *View) Minters(startAfter ref.Address, limit uint32) ([]ref.Address, error) {
	var start []byte
	if !startAfter.IsZero() {
		start = append(minterKey(startAfter), 0)
	}
	size := v.pageSize(limit)
	minters := make([]ref.Address, 0, size)
	err := v.reader.Iterate(prefixMinter, start, func(key, _ []byte) error {
		if len(minters) >= size {
			return kvstore.ErrStop
		}
		address, err := ref.ParseAddress(string(bytes.TrimPrefix(key, prefixMinter)))
		if err != nil {
			return err
		}
		minters = append(minters, address)
		return nil
	})
	return minters, err
}
