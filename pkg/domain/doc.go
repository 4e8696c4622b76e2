/*
Package domain contains the core domain models for flow-screen validation.

It defines the entities the validation engine operates on: flows, the screens
they reference, parameter declarations, and the two recoverable error kinds.
This package is kept pure and free of I/O or persistence concerns, following
Hexagonal Architecture principles.

# Key Entities

  - Flow: a named, ordered sequence of screens with declared client/server
    input schemas.
  - Screen: a reusable UI unit with its own declared parameter schema,
    referenced by flows through its slug.
  - RequiredParameter: one input a screen instance draws from the standard,
    client, or server namespace, with its usage category.
  - UnchangedScreen: a (uid, slug, schema) snapshot captured during
    validation, used by callers to build optimistic-concurrency preconditions.
*/
package domain
