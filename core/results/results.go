// Package results collates the result lines of a workload run into counts
// per status and a throughput figure, and writes them to a result
// directory.
package results

import (
	"sort"
	"strings"
	"time"
)

// Results describes one workload run
type Results struct {
	Workload   string         `json:"Workload"`   // Name of the workload subcommand
	Total      int            `json:"Total"`      // Number of work items
	Statuses   map[string]int `json:"Statuses"`   // Number of items per status token
	Elapsed    float64        `json:"Elapsed"`    // Wall clock seconds of the run
	Throughput float64        `json:"Throughput"` // Successful transactions per second
}

// lineStatus returns the status token of a result line, always its last
// field.
func lineStatus(line string) string {
	index := strings.LastIndexByte(line, '\t')
	return line[index+1:]
}

// CalculateResults counts the statuses of the result lines. `success` is
// the token of successful items.
func CalculateResults(workload string, lines []string, success string, elapsed time.Duration) Results {
	statuses := make(map[string]int)

	for _, line := range lines {
		statuses[lineStatus(line)]++
	}

	ret := Results{
		Workload: workload,
		Total:    len(lines),
		Statuses: statuses,
		Elapsed:  elapsed.Seconds(),
	}

	if ret.Elapsed > 0 {
		ret.Throughput = float64(statuses[success]) / ret.Elapsed
	}

	return ret
}

// Count of items with the given status
func (r Results) Count(status string) int {
	return r.Statuses[status]
}

// SortedStatuses lists the statuses seen, most frequent first.
func (r Results) SortedStatuses() []string {
	ret := make([]string, 0, len(r.Statuses))

	for status := range r.Statuses {
		ret = append(ret, status)
	}

	sort.Slice(ret, func(i, j int) bool {
		if r.Statuses[ret[i]] != r.Statuses[ret[j]] {
			return r.Statuses[ret[i]] > r.Statuses[ret[j]]
		}
		return ret[i] < ret[j]
	})

	return ret
}
