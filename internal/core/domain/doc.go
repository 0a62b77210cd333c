// Package domain defines the core business entities for the content library.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: One flat content item delivered by the backend
//   - Group: A render-ready aggregate (single, chunk group, image stack)
//   - Page: A window over the ordered group list
//   - Event: A backend push notification
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
