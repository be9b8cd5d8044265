package topic

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const maxTopicMemoBytes = 100

// BuildCreateTopicTx builds a topic create from options.
func BuildCreateTopicTx(options CreateTopicOptions) (*hedera.TopicCreateTransaction, error) {
	if len(options.Memo) > maxTopicMemoBytes {
		return nil, fmt.Errorf("topic memo exceeds %d bytes", maxTopicMemoBytes)
	}

	transaction := hedera.NewTopicCreateTransaction()
	if memo := strings.TrimSpace(options.Memo); memo != "" {
		transaction.SetTopicMemo(memo)
	}
	if options.AdminKey != nil {
		transaction.SetAdminKey(options.AdminKey)
	}
	if !options.SubmitPolicy.IsZero() {
		if err := options.SubmitPolicy.Validate(); err != nil {
			return nil, err
		}
		transaction.SetSubmitKey(options.SubmitPolicy.Key())
	}
	return transaction, nil
}

// BuildSubmitMessageTx builds a message submission to topicID.
func BuildSubmitMessageTx(topicID string, message []byte) (*hedera.TopicMessageSubmitTransaction, error) {
	parsedTopicID, err := hedera.TopicIDFromString(strings.TrimSpace(topicID))
	if err != nil {
		return nil, fmt.Errorf("invalid topic ID: %w", err)
	}
	if len(message) == 0 {
		return nil, fmt.Errorf("message is required")
	}

	return hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(parsedTopicID).
		SetMessage(message), nil
}
