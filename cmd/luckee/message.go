// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tidwall/jsonc"

	"github.com/luckee-foundation/luckee/lib/codec"
	"github.com/luckee-foundation/luckee/lib/host"
	"github.com/luckee-foundation/luckee/lib/registry"
)

// readInput reads path, or stdin when path is "-".
func (c *cli) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(path)
}

// encodeMessage converts a JSONC message into the CBOR form the host
// accepts. Comments and trailing commas are stripped first. Numbers
// keep their integer type so token ids survive unchanged.
func encodeMessage(data []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()

	var message any
	if err := decoder.Decode(&message); err != nil {
		return nil, fmt.Errorf("parsing message: %w", err)
	}
	if _, ok := message.(map[string]any); !ok {
		return nil, fmt.Errorf("message must be a JSON object")
	}
	normalized, err := normalizeNumbers(message)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(normalized)
}

// normalizeNumbers replaces every json.Number with uint64, int64, or
// float64, preferring the unsigned form.
func normalizeNumbers(value any) (any, error) {
	switch typed := value.(type) {
	case json.Number:
		if unsigned, err := strconv.ParseUint(typed.String(), 10, 64); err == nil {
			return unsigned, nil
		}
		if signed, err := typed.Int64(); err == nil {
			return signed, nil
		}
		float, err := typed.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", typed, err)
		}
		return float, nil
	case map[string]any:
		for key, element := range typed {
			normalized, err := normalizeNumbers(element)
			if err != nil {
				return nil, err
			}
			typed[key] = normalized
		}
		return typed, nil
	case []any:
		for i, element := range typed {
			normalized, err := normalizeNumbers(element)
			if err != nil {
				return nil, err
			}
			typed[i] = normalized
		}
		return typed, nil
	default:
		return value, nil
	}
}

// decodeData turns a CBOR answer into a value encoding/json can print.
func decodeData(data codec.RawMessage) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var value any
	if err := codec.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decoding answer: %w", err)
	}
	return value, nil
}

type resultOutput struct {
	Action string           `json:"action"`
	Height uint64           `json:"height"`
	Events []registry.Event `json:"events,omitempty"`
	Data   any              `json:"data,omitempty"`
}

func (c *cli) writeResult(result *host.Result) error {
	data, err := decodeData(result.Data)
	if err != nil {
		return err
	}
	return c.writeJSON(resultOutput{
		Action: result.Action,
		Height: result.Height,
		Events: result.Events,
		Data:   data,
	})
}

func (c *cli) writeJSON(value any) error {
	encoder := json.NewEncoder(c.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
