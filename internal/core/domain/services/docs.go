// Package services holds domain logic spanning the courier and order aggregates.
//
// DispatchService is the only service: it filters couriers by capacity, selects the
// one with the smallest travel time to the order and performs the assignment on
// both aggregates.
package services
