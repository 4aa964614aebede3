// Package store implements the price-table store on SQL databases and Redis.
//
// Every implementation offers the same four operations: read the explicitly
// stored cells of a product family, upsert one cell keyed by
// (family, widthIndex, heightIndex), read the singleton coefficient row, and
// upsert a subset of its fields. Reads always go to the backend; nothing is
// cached.
package store

import "errors"

// ErrNotFound is returned by ReadCoefficients when no settings row exists.
var ErrNotFound = errors.New("not found")

// settingsID pins the singleton settings row in SQL backends.
const settingsID = 1
