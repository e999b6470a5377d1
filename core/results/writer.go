package results

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// checkFileExists is a simple stat check to ensure that the file
// exists at the given path.
func checkFileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// checkIsRegular checks if the file is a regular file, else it's a special
// file (that can't be copied)
func checkIsRegular(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}

	return stat.Mode().IsRegular()
}

// copyFile copies a file from the source to the destination.
// Note: It can only copy regular files.
func copyFile(fromPath string, toPath string) error {
	if !checkIsRegular(fromPath) {
		return fmt.Errorf("%s is not a regular file that can be copied", fromPath)
	}

	source, err := os.Open(fromPath)
	if err != nil {
		return err
	}
	defer source.Close()

	dest, err := os.Create(toPath)
	if err != nil {
		return err
	}
	defer dest.Close()

	_, err = io.Copy(dest, source)

	return err
}

// writeResults marshals the data into JSON and writes the result as a JSON file
func writeResults(path string, data Results) error {
	f, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, f, 0644)
}

// WriteResultsToFile bundles a run into the given directory: the summary as
// JSON, the result lines, and a copy of the cluster configuration when
// there is one. Files are prefixed with the run timestamp. It returns the
// path of the summary.
func WriteResultsToFile(clusterConfig string, results Results, lines []string, resultDir string) (string, error) {
	if !checkFileExists(resultDir) {
		err := os.MkdirAll(resultDir, 0755)
		if err != nil {
			return "", err
		}
	}

	ts := time.Now().Format(time.RFC3339)
	prefix := filepath.Join(resultDir, fmt.Sprintf("%s_%s", ts, results.Workload))

	summary := prefix + "_results.json"

	err := writeResults(summary, results)
	if err != nil {
		return "", err
	}

	err = os.WriteFile(prefix+"_lines.tsv", []byte(strings.Join(lines, "\n")+"\n"), 0644)
	if err != nil {
		return "", err
	}

	if clusterConfig != "" {
		err = copyFile(clusterConfig, prefix+"_cluster.yaml")
		if err != nil {
			return "", err
		}
	}

	return summary, nil
}
