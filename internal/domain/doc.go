// Package domain holds the core types and error taxonomy shared across the
// helmsman application layers. It has no dependencies on infrastructure.
package domain
