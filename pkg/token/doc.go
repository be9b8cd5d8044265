// Package token creates finite-supply NFT collections with a royalty fee,
// mints them one serial at a time, and moves them between accounts.
package token
