// Package session persists pending threshold transactions in a local bbolt
// database so that signatures can be collected across several invocations.
package session
