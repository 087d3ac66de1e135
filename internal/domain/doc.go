// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (errors.go, client.go, session.go, payment.go, etc.)
// with shared types and cross-cutting interfaces. No implementation code beyond small value
// methods. Interfaces live here so adapters and the app layer never import each other.
package domain
