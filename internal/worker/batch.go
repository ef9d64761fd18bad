package worker

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/pricelens/internal/pipeline"
)

// Scanner resolves the tooltip under a pointer in a saved screenshot
type Scanner interface {
	RunScreenshot(ctx context.Context, path string, pointer image.Point) (*pipeline.Outcome, error)
}

// Shot is one screenshot with the pointer position at capture time
type Shot struct {
	Path    string
	Pointer image.Point
}

// ShotJob resolves one screenshot
type ShotJob struct {
	Index   int
	Shot    Shot
	Scanner Scanner
}

// Execute runs the scan
func (j *ShotJob) Execute(ctx context.Context) Result {
	outcome, err := j.Scanner.RunScreenshot(ctx, j.Shot.Path, j.Shot.Pointer)
	return &ShotResult{
		Index:   j.Index,
		Shot:    j.Shot,
		Outcome: outcome,
		Error:   err,
	}
}

// ShotResult is the outcome for one screenshot
type ShotResult struct {
	Index   int
	Shot    Shot
	Outcome *pipeline.Outcome
	Error   error
}

// GetError returns the scan error
func (r *ShotResult) GetError() error {
	return r.Error
}

// BatchProcessor resolves many screenshots concurrently
type BatchProcessor struct {
	scanner     Scanner
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(scanner Scanner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		scanner:     scanner,
		concurrency: concurrency,
	}
}

// Process scans every shot and returns results in input order
func (b *BatchProcessor) Process(ctx context.Context, shots []Shot) []*ShotResult {
	if len(shots) == 0 {
		return []*ShotResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, shot := range shots {
		if !pool.Submit(&ShotJob{Index: i, Shot: shot, Scanner: b.scanner}) {
			break
		}
	}

	results := pool.Wait()

	out := make([]*ShotResult, len(results))
	for i, r := range results {
		out[i] = r.(*ShotResult)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ProcessFile reads a shot list and processes it
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ShotResult, error) {
	shots, err := ReadShotsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read shots: %w", err)
	}
	return b.Process(ctx, shots), nil
}

// ReadShotsFromFile reads "path x y" lines. Blank lines and # comments are
// skipped, duplicates dropped, and relative paths resolved against the list's
// directory.
func ReadShotsFromFile(filePath string) ([]Shot, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(filePath)
	var shots []Shot
	seen := make(map[Shot]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		shot, err := parseShot(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !filepath.IsAbs(shot.Path) {
			shot.Path = filepath.Join(base, shot.Path)
		}

		if !seen[shot] {
			seen[shot] = true
			shots = append(shots, shot)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return shots, nil
}

// parseShot splits from the right so paths may contain spaces
func parseShot(line string) (Shot, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Shot{}, fmt.Errorf("expected \"path x y\", got %q", line)
	}
	x, err := strconv.Atoi(fields[len(fields)-2])
	if err != nil {
		return Shot{}, fmt.Errorf("bad x coordinate: %w", err)
	}
	y, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return Shot{}, fmt.Errorf("bad y coordinate: %w", err)
	}

	path := strings.TrimSpace(line)
	for i := 0; i < 2; i++ {
		path = strings.TrimSpace(path[:strings.LastIndexAny(path, " \t")])
	}
	return Shot{Path: path, Pointer: image.Pt(x, y)}, nil
}
