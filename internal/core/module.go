package core

// ModuleID identifies a module, namespaced by concern
// (e.g. "channel.whatsapp", "store.redis").
type ModuleID string

// ModuleInfo describes a module instance.
type ModuleInfo struct {
	ID ModuleID
}

// Module is the minimal contract every lifecycle participant implements.
type Module interface {
	ModuleInfo() ModuleInfo
}
