// Package app provides the application service layer.
//
// Validates registration and session requests, writes them through the
// client ledger and sends the resulting notifications. Depends on domain
// interfaces, not concrete implementations.
package app
