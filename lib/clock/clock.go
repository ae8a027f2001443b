// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock returns the current time. Production code injects Real(); tests
// inject Fake().
type Clock interface {
	Now() time.Time
}
