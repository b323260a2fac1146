// Package courier implements the Courier aggregate and its StoragePlace entities.
//
// A courier is free when none of its storage places is occupied and busy as soon
// as one of them holds an order. Orders are placed first-fit: the first storage
// place, in insertion order, whose volume fits the order receives it.
package courier
