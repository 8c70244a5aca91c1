// Package middleware provides composable wrappers around a WorkflowStore.
package middleware

import "github.com/ostryzhko/flowpath/pkg/ports"

// Middleware allows wrapping a WorkflowStore to add behavior.
type Middleware func(ports.WorkflowStore) ports.WorkflowStore
