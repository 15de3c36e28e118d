// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The package also owns the error taxonomy shared by every layer: stores
// raise the narrowest applicable Kind, services add context or widen
// database faults to internal errors, and the API maps kinds to HTTP
// statuses.
package domain
