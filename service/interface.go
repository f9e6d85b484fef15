package service

// Service defines the lifecycle interface for long-lived subsystems
// Services manage resources such as audio outputs and manifest watchers
//
// Lifecycle:
//  1. Construction (via factory)
//  2. Init(args...) - configuration from parsed flags/env
//  3. Start() - acquire devices, launch background goroutines
//  4. [runtime operation]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	// Return nil or empty slice if no dependencies
	Dependencies() []string

	// Init configures the service from optional args
	// Args are service-specific (config struct, manifest path)
	Init(args ...any) error

	// Start begins service operation (launches goroutines if any)
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}

// ResourcePublisher is a callback for services to contribute shared resources
// Services call this with their handles; receiver handles type routing
type ResourcePublisher func(resource any)

// ResourceContributor is implemented by services that expose handles to other services
// Optional interface - services not implementing it are skipped during contribution
type ResourceContributor interface {
	Contribute(publish ResourcePublisher)
}

// ResourceConsumer is implemented by services that need handles published by others
// Called once per published resource, after its publisher started
type ResourceConsumer interface {
	Consume(resource any)
}
