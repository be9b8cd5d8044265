package mirror

// Key is the mirror node representation of an account or topic key. For a
// threshold key the type is ProtobufEncoding and Key is the hex encoded
// protobuf.
type Key struct {
	Type string `json:"_type"`
	Key  string `json:"key"`
}

// AccountBalance is the balance snapshot embedded in AccountInfo.
type AccountBalance struct {
	Balance   int64          `json:"balance"`
	Timestamp string         `json:"timestamp"`
	Tokens    []TokenBalance `json:"tokens"`
}

// TokenBalance is one token held by an account.
type TokenBalance struct {
	TokenID string `json:"token_id"`
	Balance int64  `json:"balance"`
}

// AccountInfo is the /accounts/{id} response.
type AccountInfo struct {
	Account          string         `json:"account"`
	Balance          AccountBalance `json:"balance"`
	Deleted          bool           `json:"deleted"`
	Key              *Key           `json:"key"`
	Memo             string         `json:"memo"`
	EVMAddress       string         `json:"evm_address"`
	CreatedTimestamp string         `json:"created_timestamp"`
}

// TopicInfo is the /topics/{id} response.
type TopicInfo struct {
	AdminKey         *Key   `json:"admin_key"`
	SubmitKey        *Key   `json:"submit_key"`
	CreatedTimestamp string `json:"created_timestamp"`
	Deleted          bool   `json:"deleted"`
	Memo             string `json:"memo"`
	TopicID          string `json:"topic_id"`
}

// TopicMessage is one consensus message. Message is base64.
type TopicMessage struct {
	ConsensusTimestamp string `json:"consensus_timestamp"`
	Message            string `json:"message"`
	PayerAccountID     string `json:"payer_account_id"`
	SequenceNumber     int64  `json:"sequence_number"`
	TopicID            string `json:"topic_id"`
}

// NFT is one serial held by an account.
type NFT struct {
	AccountID    string `json:"account_id"`
	Metadata     string `json:"metadata"`
	SerialNumber int64  `json:"serial_number"`
	TokenID      string `json:"token_id"`
	Deleted      bool   `json:"deleted"`
}

// Transaction is one record of the /transactions/{id} response.
type Transaction struct {
	ChargedTxFee       int64      `json:"charged_tx_fee"`
	ConsensusTimestamp string     `json:"consensus_timestamp"`
	EntityID           *string    `json:"entity_id"`
	MaxFee             string     `json:"max_fee"`
	MemoBase64         string     `json:"memo_base64"`
	Name               string     `json:"name"`
	Node               string     `json:"node"`
	Result             string     `json:"result"`
	Scheduled          bool       `json:"scheduled"`
	TransactionID      string     `json:"transaction_id"`
	Transfers          []Transfer `json:"transfers"`
}

// Transfer is one hbar movement of a Transaction.
type Transfer struct {
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	IsApproval bool   `json:"is_approval"`
}

type links struct {
	Next string `json:"next"`
}

type topicMessagesResponse struct {
	Links    links          `json:"links"`
	Messages []TopicMessage `json:"messages"`
}

type nftsResponse struct {
	Links links `json:"links"`
	NFTs  []NFT `json:"nfts"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Links        links         `json:"links"`
}
