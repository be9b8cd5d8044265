package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 30 * time.Second
	// maxErrorBody bounds how much of a failed response is kept in a StatusError.
	maxErrorBody = 512
)

var ErrNotFound = errors.New("mirror node resource not found")

var defaultBaseURLs = map[string]string{
	shared.NetworkMainnet:    "https://mainnet-public.mirrornode.hedera.com",
	shared.NetworkTestnet:    "https://testnet.mirrornode.hedera.com",
	shared.NetworkPreviewnet: "https://previewnet.mirrornode.hedera.com",
}

// StatusError is a non-2xx mirror node answer. A 404 matches ErrNotFound.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("mirror node returned %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("mirror node returned %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Config configures a mirror Client. Network selects the default base URL.
type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
	Headers    map[string]string
}

// Client reads the mirror node REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header
}

// MessageQueryOptions filters and bounds GetTopicMessages.
type MessageQueryOptions struct {
	SequenceNumber string
	Limit          int
	Order          string
	// MaxPages bounds pagination. Zero follows every next link.
	MaxPages int
}

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}
	baseURL, err := parseBaseURL(config.BaseURL, network)
	if err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	if apiKey := strings.TrimSpace(config.APIKey); apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}
	for key, value := range config.Headers {
		header.Set(key, value)
	}

	return &Client{baseURL: baseURL, httpClient: httpClient, header: header}, nil
}

func parseBaseURL(raw string, network string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		candidate = defaultBaseURLs[network]
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid mirror base URL %q: scheme must be http or https", candidate)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid mirror base URL %q: host is required", candidate)
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}

// BaseURL returns the base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetAccount returns the account with its key and current balance.
func (c *Client) GetAccount(ctx context.Context, accountID string) (AccountInfo, error) {
	var info AccountInfo
	path, err := entityPath("accounts", accountID)
	if err != nil {
		return info, err
	}
	err = c.getJSON(ctx, path, &info)
	return info, err
}

// GetAccountBalance returns the account balance in tinybars.
func (c *Client) GetAccountBalance(ctx context.Context, accountID string) (int64, error) {
	info, err := c.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return info.Balance.Balance, nil
}

// GetTopicInfo returns the topic keys and memo.
func (c *Client) GetTopicInfo(ctx context.Context, topicID string) (TopicInfo, error) {
	var info TopicInfo
	path, err := entityPath("topics", topicID)
	if err != nil {
		return info, err
	}
	err = c.getJSON(ctx, path, &info)
	return info, err
}

// GetTopicMessages follows pagination links until exhausted or
// options.MaxPages pages were read.
func (c *Client) GetTopicMessages(
	ctx context.Context,
	topicID string,
	options MessageQueryOptions,
) ([]TopicMessage, error) {
	path, err := entityPath("topics", topicID)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if options.SequenceNumber != "" {
		query.Set("sequencenumber", options.SequenceNumber)
	}
	if options.Limit > 0 {
		query.Set("limit", strconv.Itoa(options.Limit))
	}
	if options.Order != "" {
		query.Set("order", options.Order)
	}

	return collectPages(ctx, c, withQuery(path+"/messages", query), options.MaxPages,
		func(page topicMessagesResponse) ([]TopicMessage, string) {
			return page.Messages, page.Links.Next
		})
}

// GetAccountNFTs lists the NFTs of tokenID held by accountID. An empty
// tokenID lists every NFT the account holds.
func (c *Client) GetAccountNFTs(ctx context.Context, accountID string, tokenID string) ([]NFT, error) {
	path, err := entityPath("accounts", accountID)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	if token := strings.TrimSpace(tokenID); token != "" {
		query.Set("token.id", token)
	}

	return collectPages(ctx, c, withQuery(path+"/nfts", query), 0,
		func(page nftsResponse) ([]NFT, string) {
			return page.NFTs, page.Links.Next
		})
}

// GetTransaction returns every record for transactionID, including the
// scheduled child of a schedule. The ID may use either the SDK form
// 0.0.2@1700000000.000000001 or the mirror form 0.0.2-1700000000-000000001.
// A nil slice means the mirror node has not seen the transaction yet.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) ([]Transaction, error) {
	path, err := entityPath("transactions", NormalizeTransactionID(transactionID))
	if err != nil {
		return nil, err
	}

	var response transactionsResponse
	if err := c.getJSON(ctx, path, &response); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(response.Transactions) == 0 {
		return nil, nil
	}
	return response.Transactions, nil
}

// NormalizeTransactionID converts an SDK transaction ID into the form used
// by mirror node paths.
func NormalizeTransactionID(transactionID string) string {
	trimmed, _, _ := strings.Cut(strings.TrimSpace(transactionID), "?")
	payer, validStart, found := strings.Cut(trimmed, "@")
	if !found {
		return trimmed
	}
	return payer + "-" + strings.Replace(validStart, ".", "-", 1)
}

// DecodeMessageData returns the raw bytes of a topic message.
func DecodeMessageData(message TopicMessage) ([]byte, error) {
	if strings.TrimSpace(message.Message) == "" {
		return nil, fmt.Errorf("message payload is empty")
	}
	return base64.StdEncoding.DecodeString(message.Message)
}

func entityPath(collection string, id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("%s ID is required", strings.TrimSuffix(collection, "s"))
	}
	return apiPrefix + "/" + collection + "/" + url.PathEscape(trimmed), nil
}

func withQuery(path string, query url.Values) string {
	if encoded := query.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// collectPages reads first and every following links.next page. maxPages
// of zero means no limit.
func collectPages[P any, T any](
	ctx context.Context,
	c *Client,
	first string,
	maxPages int,
	extract func(P) ([]T, string),
) ([]T, error) {
	items := make([]T, 0)
	next := first
	for read := 0; next != ""; read++ {
		if maxPages > 0 && read >= maxPages {
			break
		}
		var page P
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		pageItems, link := extract(page)
		items = append(items, pageItems...)
		next = link
	}
	return items, nil
}

func (c *Client) getJSON(ctx context.Context, pathOrURL string, target any) error {
	requestURL := c.resolveURL(pathOrURL)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create mirror node request: %w", err)
	}
	request.Header = c.header.Clone()

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("mirror node request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return &StatusError{
			StatusCode: response.StatusCode,
			URL:        requestURL,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode mirror node response from %s: %w", requestURL, err)
	}
	return nil
}

func (c *Client) resolveURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return c.baseURL + pathOrURL
}
