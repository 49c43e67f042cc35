package collector

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Stats is what can be recovered from the collector's console output.
type Stats struct {
	NewJobs     int
	JobsPerFile map[string]int
	FailedDates []string
	Errors      []string
}

var (
	reNewTotal    = regexp.MustCompile(`Added (\d+) new jobs total`)
	reJobsSaved   = regexp.MustCompile(`(\d+) jobs saved`)
	reSavedToFile = regexp.MustCompile(`Saved (\d+) jobs to (\S+)`)
	reFailedDate  = regexp.MustCompile(`Failed.*?(\d{4}-\d{2}-\d{2})`)
)

// ParseStats extracts collection statistics from the collector output.
// The collector is an external process, so every pattern is best effort.
func ParseStats(output string) Stats {
	stats := Stats{JobsPerFile: map[string]int{}}

	if m := reNewTotal.FindStringSubmatch(output); m != nil {
		stats.NewJobs = atoi(m[1])
	} else if m := reJobsSaved.FindStringSubmatch(output); m != nil {
		stats.NewJobs = atoi(m[1])
	}

	for _, m := range reSavedToFile.FindAllStringSubmatch(output, -1) {
		stats.JobsPerFile[filepath.Base(m[2])] = atoi(m[1])
	}

	lower := strings.ToLower(output)
	if strings.Contains(output, "CRITICAL DATA ISSUE") || strings.Contains(lower, "failed") {
		for _, m := range reFailedDate.FindAllStringSubmatch(output, -1) {
			stats.FailedDates = append(stats.FailedDates, m[1])
		}
		for _, line := range strings.Split(output, "\n") {
			l := strings.ToLower(line)
			if strings.Contains(l, "error") || strings.Contains(l, "failed") {
				stats.Errors = append(stats.Errors, strings.TrimSpace(line))
			}
			if len(stats.Errors) == 3 {
				break
			}
		}
	}
	return stats
}

// atoi is safe here, the regexp groups only match digits.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
