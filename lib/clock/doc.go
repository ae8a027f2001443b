// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock supplies block time to the host runtime.
//
// Approval expiry and synthesis series markers are derived from the
// time of the call being executed. The host reads it from a [Clock] so
// tests can pin and advance it with [Fake] instead of depending on the
// wall clock.
package clock
