// Package core defines the shared domain model of the forge: cognitive
// agents, typed memory entries, dependency-gated workflows, synergy
// registrations, the metadata value union, error kinds, and the contracts of
// the external collaborators (runtime manager, inference provider handle).
//
// All higher-level packages (registry, memory, reasoning, workflow, synergy)
// depend on core; core depends on nothing but the standard library and the
// uuid generator.
package core
