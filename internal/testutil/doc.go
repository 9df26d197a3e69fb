// Package testutil provides deterministic stand-ins for the engine's
// external collaborators: an in-process simulator runner and fixed run ID
// generators.
package testutil
