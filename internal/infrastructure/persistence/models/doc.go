// Package models contains the GORM persistence models mirroring the domain
// aggregates. Models own the storage concerns (column types, indexes,
// uniqueness) and convert to and from domain types via ToDomain/FromDomain.
package models
