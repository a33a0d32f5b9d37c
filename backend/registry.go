package backend

import (
	"sync"
)

// Backend name constants.
const (
	// NameSoftware is the name of the in-memory software device.
	NameSoftware = "software"
	// NameWebGPU is the name of the WebGPU device (backend/webgpu).
	NameWebGPU = "webgpu"
	// NameVulkan is the name of the Vulkan device (backend/vulkan).
	NameVulkan = "vulkan"
	// NameGL is the name of the OpenGL device (backend/gl).
	NameGL = "gl"
	// NameNative is the name of the pure-Go WebGPU device (backend/native).
	NameNative = "native"
)

// Factory creates a new device instance. Factories for backends that need a
// host-supplied native device return an error when constructed through the
// registry without one.
type Factory func() (Device, error)

// registry holds registered device factories.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for default selection (first that constructs wins).
	// GPU devices outrank the software fallback.
	priority = []string{NameWebGPU, NameVulkan, NameGL, NameNative, NameSoftware}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in backend packages.
// If a factory with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a factory from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get constructs a device by name.
// Returns ErrBackendNotAvailable if no factory is registered under name.
func Get(name string) (Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrBackendNotAvailable
	}
	return factory()
}

// Default constructs the best available device based on priority order,
// falling back to any registered factory that succeeds.
// Returns ErrBackendNotAvailable if nothing can be constructed.
func Default() (Device, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range priority {
		if factory, ok := factories[name]; ok {
			if d, err := factory(); err == nil {
				return d, nil
			}
		}
	}

	// Fallback: first registered factory that constructs.
	for _, factory := range factories {
		if d, err := factory(); err == nil {
			return d, nil
		}
	}

	return nil, ErrBackendNotAvailable
}

// MustDefault constructs the default device or panics.
func MustDefault() Device {
	d, err := Default()
	if err != nil {
		panic("backend: no backend available")
	}
	return d
}
