package metasnv

import (
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"strings"

	"github.com/grailbio/base/log"
)

// Constants
const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB
)

// bytesPerPosition approximates the memory held per recorded position
// (one position and one depth, both int).
const bytesPerPosition = 16

// maxThreads is the point past which extra workers rarely help.
const maxThreads = 64

// Config holds the settings of one coverage run.
type Config struct {
	ProjectDir string // Output project directory, local path or s3:// URI
	InputDir   string // Directory of BAM files, one per sample

	Threads    int  // Number of parallel workers (default: performance cores)
	MinMapQ    int  // Minimum mapping quality counted toward depth (default: 0)
	UsePrevCov bool // Reuse cached coverage from a previous run (default: false)

	ShowProgress bool // Log one line per finished sample (default: true)
}

// NewConfig creates a Config with smart defaults.
func NewConfig() *Config {
	return &Config{
		Threads:      detectOptimalWorkers(),
		ShowProgress: true,
	}
}

// Validate checks the configuration and warns about potential issues.
func (c *Config) Validate() error {
	if c.ProjectDir == "" {
		return errors.New("project directory is required")
	}
	if c.InputDir == "" && !c.UsePrevCov {
		return errors.New("input directory is required")
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be >= 1, got %d", c.Threads)
	}
	if c.MinMapQ < 0 || c.MinMapQ > 255 {
		return fmt.Errorf("minimum mapping quality must be between 0 and 255, got %d", c.MinMapQ)
	}
	if c.Threads > maxThreads {
		log.Printf("warning: more than %d threads may cause diminishing returns", maxThreads)
	}
	return nil
}

// ProjectName returns the last element of the project directory, used to
// name the matrix files.
func (c *Config) ProjectName() string {
	dir := strings.TrimRight(c.ProjectDir, "/")
	if IsS3URI(dir) {
		return path.Base(dir)
	}
	return path.Base(strings.ReplaceAll(dir, "\\", "/"))
}

// EstimateMemory returns the approximate memory needed to hold the coverage
// of every sample at once.
func EstimateMemory(referenceLength int64, samples int) int64 {
	return referenceLength * int64(samples) * bytesPerPosition
}

// CheckMemory logs a warning when the estimated coverage footprint exceeds
// the available memory.
func CheckMemory(referenceLength int64, samples int) {
	need := EstimateMemory(referenceLength, samples)
	mem := getSystemMemory()
	if need > mem.Available {
		log.Printf("warning: holding %d samples of %d bp needs about %.1f GB, %.1f GB available",
			samples, referenceLength, float64(need)/float64(GB), float64(mem.Available)/float64(GB))
	}
}

// ShowConfig prints the effective configuration
func (c *Config) ShowConfig(w io.Writer) {
	memStats := getSystemMemory()

	fmt.Fprintf(w, "System Information:\n")
	fmt.Fprintf(w, "  Total RAM: %.1f GB\n", float64(memStats.Total)/float64(GB))
	fmt.Fprintf(w, "  Available RAM: %.1f GB\n", float64(memStats.Available)/float64(GB))

	totalCores := runtime.NumCPU()
	optimalWorkers := detectOptimalWorkers()
	if optimalWorkers < totalCores {
		fmt.Fprintf(w, "  CPU cores: %d total (%d performance, %d efficiency)\n",
			totalCores, optimalWorkers, totalCores-optimalWorkers)
	} else {
		fmt.Fprintf(w, "  CPU cores: %d\n", totalCores)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Configuration:\n")
	fmt.Fprintf(w, "  Project: %s (%s)\n", c.ProjectDir, c.ProjectName())
	fmt.Fprintf(w, "  Input: %s\n", c.InputDir)
	fmt.Fprintf(w, "  Threads: %d\n", c.Threads)
	fmt.Fprintf(w, "  Min mapping quality: %d\n", c.MinMapQ)
	if c.UsePrevCov {
		fmt.Fprintf(w, "  Coverage: reuse %s/%s\n", c.ProjectDir, covDir)
	} else {
		fmt.Fprintf(w, "  Coverage: compute from BAM files\n")
	}
	fmt.Fprintf(w, "\n")
}

// SystemMemory holds system memory information
type SystemMemory struct {
	Total     int64
	Available int64
}

// getSystemMemory returns system memory stats
func getSystemMemory() SystemMemory {
	total, available := detectSystemMemory()

	// Fallback to sensible defaults if detection fails
	if total == 0 {
		total = 16 * GB
		available = 12 * GB
	}
	return SystemMemory{Total: total, Available: available}
}
