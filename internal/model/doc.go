// Package model defines the shared order domain types.
//
// Conventions:
//   - Money: integer kuruş (1/100 of a lira), captured at order time
//   - Timestamps: time.Time in the server's zone, parsed at the API boundary
//   - IDs: int64 for orders (server-assigned), string for tables
package model
