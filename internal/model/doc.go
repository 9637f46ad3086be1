// Package model holds the domain types shared across the application: runs,
// timeline records, and the small value types that hang off them. These are
// plain data carriers; behavior lives in the packages that consume them.
package model
