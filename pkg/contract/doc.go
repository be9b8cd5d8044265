// Package contract deploys contract bytecode and calls functions that take
// uint16 arguments, reading small integer results from the call record.
package contract
