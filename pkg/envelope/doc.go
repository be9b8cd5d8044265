// Package envelope serializes a pending threshold transaction so that it can
// be passed between signers out of band. An encoded envelope is JSON,
// brotli-compressed and base64-encoded.
package envelope
