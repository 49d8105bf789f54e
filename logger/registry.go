package logger

import (
	"sync"
)

// Component logger names shared across padflow.
const (
	ComponentDAG     = "dag"
	ComponentInspect = "inspect"
	ComponentSink    = "sink"
	ComponentRetry   = "retry"
)

// Components lists the loggers seeded by RegisterDefaults when called
// without names.
var Components = []string{ComponentDAG, ComponentInspect, ComponentSink, ComponentRetry}

var registry = struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Register stores l as the logger of a component, replacing any previous one.
func Register(component string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[component] = l
}

// Get returns the logger registered for component. Unregistered components
// get the global logger tagged with their name, so packages can call Get
// before the CLI has installed its loggers.
func Get(component string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[component]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(component)
}

// RegisterDefaults derives a component logger from the current global
// logger for every name, or for Components when names is empty. Call it
// again after SetGlobalLogger; earlier registrations keep the old sink.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = Components
	}
	global := GetGlobalLogger()
	for _, name := range names {
		Register(name, global.WithComponent(name))
	}
}

// Reset forgets every registered component logger.
func Reset() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers = make(map[string]*Logger)
}
