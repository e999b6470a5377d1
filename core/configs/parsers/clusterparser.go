// Package parsers reads the configuration files and returns the validated
// configuration structures.
package parsers

import (
	"os"

	"gopkg.in/yaml.v3"

	"bulk-txn-submit/core/configs"
	"bulk-txn-submit/core/configs/validators"
)

// Parse the cluster configuration file.
// This function both (a) reads the file from disk, and (b) calls the YAML
// to be parsed.
func ParseClusterConfig(filePath string) (*configs.ClusterConfig, error) {

	// Get the bytes of the file
	configFileBytes, err := os.ReadFile(filePath)

	if err != nil {
		return nil, err
	}

	return parseClusterYaml(configFileBytes)
}

// Parse the cluster configuration in the YAML files.
// This will get the bytes of the file.
func parseClusterYaml(fileContents []byte) (*configs.ClusterConfig, error) {
	var clusterConfig configs.ClusterConfig
	err := yaml.Unmarshal(fileContents, &clusterConfig)

	if err != nil {
		return nil, err
	}

	// Check validity
	if ok, err := validators.ValidateClusterConfig(&clusterConfig); !ok {
		return nil, err
	}

	return &clusterConfig, nil
}
