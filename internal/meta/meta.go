// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/memogo/internal/config"
	"github.com/staranto/memogo/internal/store"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// Manager is the store registry shared by every command in this process.
	Manager *store.Manager
}
