// Package order implements the Order aggregate.
//
// An order is created with a destination and a volume, is assigned to exactly
// one courier and is completed when that courier reaches the destination:
//
//	Created -> Assigned -> Completed
//
// There is no way back and no way to skip Assigned. Assign is single shot, so a
// second Assign fails with ErrOrderIsAlreadyAssigned even for the same courier.
// Creation and completion are recorded as StatusChangedDomainEvent values that the
// persistence layer moves to the outbox in the same transaction as the order itself.
package order
