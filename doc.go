// The Hashgraph Online Multisig SDK for Go creates Hedera accounts governed
// by M-of-N threshold keys and coordinates the signatures needed to move
// value out of them.
//
// # Packages
//
//   - threshold: policies, transfer intents, pending transactions and the
//     Coordinator that submits them and interprets the network status
//   - ledger: the Hedera implementation of threshold.LedgerClient
//   - keystore: in-memory signing keys addressed by handle
//   - envelope and session: portable and persisted pending transactions for
//     signers working at different times or places
//   - schedule, topic, token, contract: scheduled transfers, consensus
//     topics, royalty NFTs and smart contract calls for participant accounts
//   - provision: funded participant accounts for development networks
//   - mirror: the subset of the mirror node REST API the packages read
//
// The hedera-multisig command under cmd/ exposes each of these.
//
// # Installation
//
//	go get github.com/hashgraph-online/multisig-sdk-go@latest
package multisig_sdk_go
