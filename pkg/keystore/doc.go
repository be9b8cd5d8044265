// Package keystore provides an in-process threshold.KeyStore. Keys are
// registered under handles and never leave the store; callers receive only
// signatures and public keys.
package keystore
