package core

// ModuleID uniquely identifies a module, namespaced by dots
// (e.g. "store.sqlite", "gateway.http").
type ModuleID string

// Module is the minimal interface every module implements.
// Optional behavior is added through the lifecycle interfaces in
// lifecycle.go (Configurable, Provisioner, Validator, Starter, Stopper,
// Reloader).
type Module interface {
	// ModuleInfo returns the module's static identity and constructor.
	ModuleInfo() ModuleInfo
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique module identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}
