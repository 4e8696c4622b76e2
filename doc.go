/*
Package flowcheck validates the parameter wiring of client flows: ordered
sequences of screens whose inputs are drawn from a standard/client/server
parameter namespace and fed into each screen's own declared schema.

Before a flow mutation is committed, every required parameter of every
referenced screen must be proven well-typed, present, non-null where the
path depends on it, and safe: values the client controls must never reach
screen fields the UI treats as raw HTML or privileged navigation.

# Architecture

The engine is pure computation over immutable inputs and is split along
Hexagonal Architecture lines:

  - pkg/schema: the schema document model and the path walker that resolves
    a parameter reference to the sub-schema it denotes.
  - pkg/catalog: the fixed table of standard parameters.
  - pkg/checker: the produced-vs-target compatibility rules per usage
    category (string_formattable, copy, extract).
  - pkg/registry: external record models reachable by auto-extraction
    (course and journey documents).
  - pkg/ports, pkg/adapters: how screen definitions are resolved by slug
    (in-memory or Redis-backed).

# Usage

	eng := flowcheck.New()
	_ = eng.Screens().PutScreen(ctx, &domain.Screen{
		Slug:   "confirmation",
		Schema: json.RawMessage(`{"type":"object","required":["title"],"properties":{"title":{"type":"string"}}}`),
	})

	unchanged, err := eng.CheckFlowScreens(ctx, flow)
	if err != nil {
		var pre *domain.PreconditionError
		if errors.As(err, &pre) {
			// Reject the mutation with HTTP 412 and pre.Field/Expected/Actual.
		}
		var missing *domain.SubresourceMissingError
		if errors.As(err, &missing) {
			// Reject with HTTP 404.
		}
		return err
	}
	// Turn the unchanged set into an optimistic-concurrency precondition
	// (e.g. SQL EXISTS clauses) before committing the flow.

Validation never retries internally: given identical inputs it is
deterministic, so a lost optimistic-concurrency race is resolved by the
caller re-running the whole validate-then-commit cycle.
*/
package flowcheck
