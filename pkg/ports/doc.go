// Package ports defines the interfaces the validation engine depends on,
// decoupling it from how screen definitions are stored. Adapters live under
// pkg/adapters; RunScreenStoreContract verifies an implementation honors the
// interface contract.
package ports
