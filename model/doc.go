// Package model defines the inference provider contract consumed by the
// reasoning invoker, plus a deterministic MockProvider for tests and local
// development. Concrete network-backed adapters live in the openai and
// anthropic sub-packages.
package model
