// Package shared provides common utilities used across the multisig SDK. It
// includes network normalization, operator and participant environment
// loading, Hedera client construction, key parsing helpers and the zerolog
// logger setup used by the CLI.
//
// # Environment Variables
//
// Operator credentials are read from HEDERA_ACCOUNT_ID / HEDERA_PRIVATE_KEY
// (or MY_ACCOUNT_ID / MY_PRIVATE_KEY), with MAINNET_ and TESTNET_ scoped
// overrides. Participant accounts are read from ACCOUNT_<n>_ID and
// ACCOUNT_<n>_PRIVATE_KEY. A .env file in the working directory or any
// parent is loaded first; variables already present in the environment win.
package shared
