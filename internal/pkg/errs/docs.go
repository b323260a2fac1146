// Package errs holds the error vocabulary shared by every layer of the dispatch service.
//
// Two families live here:
//   - generic validation errors (ValueIsRequiredError, ValueIsInvalidError,
//     ValueIsOutOfRangeError, ObjectNotFoundError) that unwrap to a package sentinel;
//   - DomainError, a business rule violation identified by a stable code such as
//     "order.is.already.assigned" and grouped by Kind.
//
// Adapters never inspect concrete types. They call KindOf and CodeOf and translate
// the result into a transport status: HTTP codes, kafka commit decisions, job logs.
package errs
