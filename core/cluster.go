package core

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"bulk-txn-submit/blockchains/aptos"
	"bulk-txn-submit/core/configs"
)

// A set of ledger nodes of the same chain.
type Cluster struct {
	logger  *zap.Logger
	name    string
	clients []*aptos.Client
	chainId uint8
	key     configs.SourceKey
}

// Connect to the nodes of `config`. When the configuration has no chain id,
// it is read from the first node.
func NewCluster(ctx context.Context, logger *zap.Logger, config *configs.ClusterConfig) (*Cluster, error) {
	var info *aptos.LedgerInfo
	var ret Cluster
	var node string
	var err error

	if len(config.Nodes) == 0 {
		return nil, fmt.Errorf("cluster has no node")
	}

	ret.name = config.Name
	ret.logger = logger.With(zap.String("cluster", ret.name))
	ret.key = config.CoinSourceKey
	ret.clients = make([]*aptos.Client, 0, len(config.Nodes))

	for _, node = range config.Nodes {
		ret.logger.Debug("use endpoint", zap.String("node", node))
		ret.clients = append(ret.clients, aptos.NewClient(logger, node))
	}

	ret.chainId = config.ChainId

	if ret.chainId == 0 {
		info, err = ret.clients[0].GetLedgerInfo(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot read chain id of cluster "+
				"'%s' from %s: %w", ret.name, ret.clients[0].Url(), err)
		}

		ret.chainId = info.ChainId
		ret.logger.Info("chain id read from ledger",
			zap.Uint8("chain_id", ret.chainId))
	}

	return &ret, nil
}

func (this *Cluster) Name() string {
	return this.name
}

func (this *Cluster) ChainId() uint8 {
	return this.chainId
}

func (this *Cluster) AllClients() []*aptos.Client {
	return this.clients
}

func (this *Cluster) RandomClient() *aptos.Client {
	return this.clients[rand.Intn(len(this.clients))]
}

// Load the account paying for the workload and synchronize its sequence
// number with the ledger.
func (this *Cluster) LoadCoinSourceAccount(ctx context.Context, client *aptos.Client) (*aptos.LocalAccount, error) {
	var account *aptos.LocalAccount
	var data *aptos.AccountData
	var err error

	if len(this.key) == 0 {
		return nil, fmt.Errorf("no coin source key for cluster '%s'",
			this.name)
	}

	account, err = aptos.LocalAccountFromHexSeed(this.key.Hex())
	if err != nil {
		return nil, err
	}

	data, err = client.GetAccount(ctx, account.Address())
	if err != nil {
		return nil, fmt.Errorf("cannot load coin source account %s: %w",
			account.Address(), err)
	}

	account.SetSequenceNumber(data.SequenceNumber)

	this.logger.Info("coin source account loaded",
		zap.String("address", account.Address().StandardString()),
		zap.Uint64("sequence", data.SequenceNumber))

	return account, nil
}
