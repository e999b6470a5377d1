package validators

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bulk-txn-submit/core/configs"
)

// Validates all fields of the cluster configuration.
// Determines the validity and returns a boolean whether it is
// valid or invalid.
func ValidateClusterConfig(c *configs.ClusterConfig) (bool, error) {
	// Name can be omitted, but we will warn.
	if len(c.Name) == 0 {
		zap.L().Warn("Missing cluster name in configuration file.")
	}

	// We need at least one node to talk to.
	if len(c.Nodes) == 0 {
		return false, errors.New("no nodes provided")
	}

	for i, node := range c.Nodes {
		if len(strings.TrimSpace(node)) == 0 {
			return false, fmt.Errorf("node %d is empty", i)
		}
	}

	// The coin source key is optional in the file (it can come from the
	// command line), but if present it was already checked on decode.
	if len(c.CoinSourceKey) == 0 {
		zap.L().Debug("no coin source key in configuration file")
	}

	return true, nil
}
