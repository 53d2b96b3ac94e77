package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/wildaware/internal/model"
)

// Classifier classifies a single message
type Classifier interface {
	Classify(message string) model.ClassificationResult
}

// ClassifyJob classifies one message of a batch
type ClassifyJob struct {
	Index      int
	Message    string
	Classifier Classifier
}

// Execute runs the classification unless the batch was cancelled
func (j *ClassifyJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ClassifyResult{Index: j.Index, Message: j.Message, Error: err}
	}
	return &ClassifyResult{
		Index:          j.Index,
		Message:        j.Message,
		Classification: j.Classifier.Classify(j.Message),
	}
}

// ClassifyResult is the outcome of one ClassifyJob
type ClassifyResult struct {
	Index          int                        `json:"index"`
	Message        string                     `json:"message"`
	Classification model.ClassificationResult `json:"classification"`
	Error          error                      `json:"-"`
}

// GetError returns the error from the classify result
func (r *ClassifyResult) GetError() error {
	return r.Error
}

// BatchProcessor classifies many messages concurrently
type BatchProcessor struct {
	classifier  Classifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(classifier Classifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		classifier:  classifier,
		concurrency: concurrency,
	}
}

// ProcessMessages classifies messages and returns results in input order.
// Messages not processed before ctx is cancelled carry ctx's error.
func (b *BatchProcessor) ProcessMessages(ctx context.Context, messages []string) []*ClassifyResult {
	if len(messages) == 0 {
		return []*ClassifyResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	collected := make(chan []Result, 1)
	go func() {
		var results []Result
		for r := range pool.Results() {
			results = append(results, r)
		}
		collected <- results
	}()

	submitted := len(messages)
	for i, msg := range messages {
		job := &ClassifyJob{Index: i, Message: msg, Classifier: b.classifier}
		if err := pool.Submit(job); err != nil {
			submitted = i
			break
		}
	}
	pool.Close()
	results := <-collected

	out := make([]*ClassifyResult, len(messages))
	for _, r := range results {
		cr := r.(*ClassifyResult)
		out[cr.Index] = cr
	}
	for i := range out {
		if out[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("message %d not processed (submitted %d)", i, submitted)
			}
			out[i] = &ClassifyResult{Index: i, Message: messages[i], Error: err}
		}
	}

	return out
}

// ProcessFile reads messages from a file and classifies them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ClassifyResult, error) {
	messages, err := ReadMessagesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}

	return b.ProcessMessages(ctx, messages), nil
}

// ReadMessagesFromFile reads one message per line. Blank lines and lines
// starting with '#' are skipped; duplicates are kept so that line order
// maps onto result order.
func ReadMessagesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var messages []string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		messages = append(messages, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return messages, nil
}
