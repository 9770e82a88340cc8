// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output filters result rows and emits them as a text table, json or
// yaml.
package output
