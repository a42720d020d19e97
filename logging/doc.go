// Package logging provides a tiny abstraction over slog so forge components
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer ForgeLogger with contextual
// helpers (component, agent) and domain specific logging helpers for model
// calls and workflow steps.
package logging
