// Package cli wires configuration, logging, the sampler and the dashboard
// into the rktop command.
package cli
