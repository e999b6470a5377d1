package aptos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	contentTypeSignedTransactionBcs = "application/x.aptos.signed_transaction+bcs"

	defaultPollInterval = 100 * time.Millisecond

	defaultRequestTimeout = 30 * time.Second
)

var ErrTransactionExpired = errors.New("transaction expired")

// REST client for one ledger node.
type Client struct {
	logger       *zap.Logger
	base         string
	http         *http.Client
	pollInterval time.Duration
}

// Create a client for the node at `url`. A bare `host:port` is accepted
// and the `/v1` API prefix is added when missing.
func NewClient(logger *zap.Logger, url string) *Client {
	var base string = strings.TrimSuffix(url, "/")

	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	if !strings.HasSuffix(base, "/v1") {
		base = base + "/v1"
	}

	return &Client{
		logger:       logger,
		base:         base,
		http:         &http.Client{Timeout: defaultRequestTimeout},
		pollInterval: defaultPollInterval,
	}
}

func (this *Client) WithPollInterval(interval time.Duration) *Client {
	var ret Client = *this
	ret.pollInterval = interval
	return &ret
}

func (this *Client) Url() string {
	return this.base
}

func IsNotFound(err error) bool {
	var apierr *ApiError

	if errors.As(err, &apierr) {
		return apierr.Status == http.StatusNotFound
	}

	return false
}

func (this *Client) do(ctx context.Context, method, path, ctype string, body []byte, out interface{}) error {
	var request *http.Request
	var response *http.Response
	var apierr *ApiError
	var content []byte
	var err error

	request, err = http.NewRequestWithContext(ctx, method, this.base+path,
		bytes.NewReader(body))
	if err != nil {
		return err
	}

	request.Header.Set("Accept", "application/json")
	if ctype != "" {
		request.Header.Set("Content-Type", ctype)
	}

	response, err = this.http.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	defer response.Body.Close()

	content, err = io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if response.StatusCode >= 300 {
		apierr = &ApiError{}
		if json.Unmarshal(content, apierr) != nil {
			apierr.Message = string(content)
		}
		apierr.Status = response.StatusCode
		return apierr
	}

	if out == nil {
		return nil
	}

	err = json.Unmarshal(content, out)
	if err != nil {
		return fmt.Errorf("%s %s: cannot decode response: %w", method,
			path, err)
	}

	return nil
}

func (this *Client) GetLedgerInfo(ctx context.Context) (*LedgerInfo, error) {
	var info LedgerInfo
	var err error

	err = this.do(ctx, http.MethodGet, "", "", nil, &info)
	if err != nil {
		return nil, err
	}

	return &info, nil
}

func (this *Client) GetAccount(ctx context.Context, address AccountAddress) (*AccountData, error) {
	var data AccountData
	var err error

	err = this.do(ctx, http.MethodGet, "/accounts/"+
		address.StandardString(), "", nil, &data)
	if err != nil {
		return nil, err
	}

	return &data, nil
}

func (this *Client) SubmitBcs(ctx context.Context, stx *SignedTransaction) (*PendingTransaction, error) {
	var pending PendingTransaction
	var raw []byte
	var err error

	raw, err = stx.BcsSerialize()
	if err != nil {
		return nil, err
	}

	this.logger.Debug("submit transaction",
		zap.String("txn", stx.getName()), zap.String("node", this.base))

	err = this.do(ctx, http.MethodPost, "/transactions",
		contentTypeSignedTransactionBcs, raw, &pending)
	if err != nil {
		return nil, fmt.Errorf("transaction %s failed: %w",
			stx.getName(), err)
	}

	return &pending, nil
}

func (this *Client) GetTransactionByHash(ctx context.Context, hash common.Hash) (*Transaction, error) {
	var txn Transaction
	var err error

	err = this.do(ctx, http.MethodGet, "/transactions/by_hash/"+
		hash.Hex(), "", nil, &txn)
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

// Poll the node until the transaction with the given hash leaves the
// pending state. Polling stops with `ErrTransactionExpired` once the wall
// clock passes `expiration` (in seconds, 0 to disable) or when `ctx` is
// done.
func (this *Client) WaitForTransactionByHash(ctx context.Context, hash common.Hash, expiration uint64) (*Transaction, error) {
	var txn *Transaction
	var err error

	for {
		txn, err = this.GetTransactionByHash(ctx, hash)
		if err == nil && !txn.IsPending() {
			return txn, nil
		}

		if err != nil && !IsNotFound(err) {
			return nil, err
		}

		if (expiration > 0) &&
			(uint64(time.Now().Unix()) > expiration) {
			return nil, fmt.Errorf("%w: %s", ErrTransactionExpired,
				hash.Hex())
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(this.pollInterval):
		}
	}
}

// Submit and block until the ledger reports the transaction as committed.
// A committed transaction is returned even when its execution failed; the
// caller inspects `Success`.
func (this *Client) SubmitAndWaitBcs(ctx context.Context, stx *SignedTransaction) (*Transaction, error) {
	var pending *PendingTransaction
	var txn *Transaction
	var err error

	pending, err = this.SubmitBcs(ctx, stx)
	if err != nil {
		return nil, err
	}

	txn, err = this.WaitForTransactionByHash(ctx, pending.Hash,
		stx.RawTxn.ExpirationTimestampSecs)
	if err != nil {
		return nil, err
	}

	this.logger.Debug("transaction committed",
		zap.String("txn", stx.getName()),
		zap.String("hash", txn.Hash.Hex()),
		zap.Bool("success", txn.Success))

	return txn, nil
}
