// Package mirror is a read-only client for the Hedera Mirror Node REST API.
// It confirms what the network recorded after a submission: account keys
// and balances, transaction results, NFT holdings and topic messages.
package mirror
