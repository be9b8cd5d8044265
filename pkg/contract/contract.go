package contract

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
)

const DefaultGas uint64 = 100_000

// ClientConfig configures a contract Client.
type ClientConfig struct {
	Network                  string
	OperatorAccountID        string
	OperatorPrivateKey       string
	DefaultMaxTransactionFee hedera.Hbar
	HederaClient             *hedera.Client
	Gas                      uint64
}

// Call is one contract function invocation.
type Call struct {
	ContractID string
	Function   string
	Uint16Args []uint16
	Gas        uint64
}

// Client deploys and calls smart contracts.
type Client struct {
	hederaClient *hedera.Client
	gas          uint64
}

// NewClient creates a new Client.
func NewClient(config ClientConfig) (*Client, error) {
	hederaClient, err := shared.ResolveClient(config.HederaClient, shared.ClientOptions{
		Network:                  config.Network,
		OperatorAccountID:        config.OperatorAccountID,
		OperatorPrivateKey:       config.OperatorPrivateKey,
		DefaultMaxTransactionFee: config.DefaultMaxTransactionFee,
	})
	if err != nil {
		return nil, err
	}
	gas := config.Gas
	if gas == 0 {
		gas = DefaultGas
	}
	return &Client{hederaClient: hederaClient, gas: gas}, nil
}

// DecodeBytecode accepts hex bytecode with or without a 0x prefix.
func DecodeBytecode(bytecode string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(bytecode), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("bytecode is required")
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	return decoded, nil
}

// BuildCreateFlow prepares a deployment of bytecode with the given gas.
func BuildCreateFlow(bytecode []byte, gas uint64) (*hedera.ContractCreateFlow, error) {
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("bytecode is required")
	}
	if gas == 0 {
		gas = DefaultGas
	}
	return hedera.NewContractCreateFlow().
		SetBytecode(bytecode).
		SetGas(int64(gas)), nil
}

// BuildExecuteTx prepares a contract call. defaultGas applies when call sets none.
func BuildExecuteTx(call Call, defaultGas uint64) (*hedera.ContractExecuteTransaction, error) {
	contractID, err := hedera.ContractIDFromString(strings.TrimSpace(call.ContractID))
	if err != nil {
		return nil, fmt.Errorf("invalid contract ID: %w", err)
	}
	function := strings.TrimSpace(call.Function)
	if function == "" {
		return nil, fmt.Errorf("function name is required")
	}
	gas := call.Gas
	if gas == 0 {
		gas = defaultGas
	}
	if gas == 0 {
		gas = DefaultGas
	}

	parameters := hedera.NewContractFunctionParameters()
	for _, argument := range call.Uint16Args {
		parameters = parameters.AddUint16(argument)
	}

	return hedera.NewContractExecuteTransaction().
		SetContractID(contractID).
		SetGas(gas).
		SetFunction(function, parameters), nil
}

// Deploy creates the contract and returns its ID.
func (c *Client) Deploy(ctx context.Context, bytecode []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	flow, err := BuildCreateFlow(bytecode, c.gas)
	if err != nil {
		return "", err
	}
	response, err := flow.Execute(c.hederaClient)
	if err != nil {
		return "", fmt.Errorf("failed to execute contract create flow: %w", err)
	}
	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return "", fmt.Errorf("failed to get contract create receipt: %w", err)
	}
	if receipt.ContractID == nil {
		return "", fmt.Errorf("contract create receipt did not include a contract ID")
	}
	return receipt.ContractID.String(), nil
}

// Execute calls a function and returns the raw result bytes from the record.
func (c *Client) Execute(ctx context.Context, call Call) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	transaction, err := BuildExecuteTx(call, c.gas)
	if err != nil {
		return nil, err
	}
	response, err := transaction.Execute(c.hederaClient)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s: %w", call.Function, err)
	}
	record, err := response.GetRecord(c.hederaClient)
	if err != nil {
		return nil, fmt.Errorf("failed to get record for %s: %w", call.Function, err)
	}
	result, err := record.GetContractExecuteResult()
	if err != nil {
		return nil, fmt.Errorf("record for %s has no function result: %w", call.Function, err)
	}
	return result.ContractCallResult, nil
}

// ExecuteUint8 calls a function whose result is a small unsigned integer and
// returns its low byte.
func (c *Client) ExecuteUint8(ctx context.Context, call Call) (uint8, error) {
	result, err := c.Execute(ctx, call)
	if err != nil {
		return 0, err
	}
	return LastByte(result)
}

// LastByte returns the final byte of an ABI encoded result.
func LastByte(result []byte) (uint8, error) {
	if len(result) == 0 {
		return 0, fmt.Errorf("function result is empty")
	}
	return result[len(result)-1], nil
}
