package providers

import (
	"fmt"
	"sync"
)

// Registry manages provider constructors. It is safe for concurrent use and
// supports registering custom providers alongside the built-in ones.
type Registry struct {
	constructors map[string]ProviderConstructor
	mutex        sync.RWMutex
}

// NewRegistry creates a registry with the requested providers. With no
// arguments, every known provider is registered.
func NewRegistry(providerNames ...string) *Registry {
	registry := &Registry{
		constructors: make(map[string]ProviderConstructor),
	}

	known := knownProviders()
	if len(providerNames) == 0 {
		for name, constructor := range known {
			registry.constructors[name] = constructor
		}
	} else {
		for _, name := range providerNames {
			if constructor, ok := known[name]; ok {
				registry.constructors[name] = constructor
			}
		}
	}

	return registry
}

func knownProviders() map[string]ProviderConstructor {
	return map[string]ProviderConstructor{
		"bedrock":   NewBedrockProvider,
		"anthropic": NewAnthropicProvider,
	}
}

// Register adds a provider constructor, replacing any existing registration
// under the same name.
func (r *Registry) Register(name string, constructor ProviderConstructor) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.constructors[name] = constructor
}

// Get builds a provider instance by name.
func (r *Registry) Get(name, apiKey, model string, extraHeaders map[string]string) (Provider, error) {
	r.mutex.RLock()
	constructor, exists := r.constructors[name]
	r.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	return constructor(apiKey, model, extraHeaders), nil
}
