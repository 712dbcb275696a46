// Package job defines the word count pipeline: one unit of work per document, summed by
// an orchestration that waits for all of them and exports the counts as Parquet.
package job

import (
	"context"
	"fmt"
	"strings"

	"github.com/tigerroll/durable/pkg/durable/core/job"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

const (
	WordCountJob  = "word_count"
	CountWordsJob = "count_words"
	PublishJob    = "publish_total"
)

// NewCountWords counts the words of one document.
func NewCountWords() job.Descriptor {
	return job.NewUnitOfWork(CountWordsJob, job.Types(job.TypeOf[string]()), job.TypeOf[int](),
		func(ctx context.Context, args []any) (any, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			doc := args[0].(string)
			n := len(strings.Fields(doc))
			logger.Debugf("Counted %d words in %q.", n, doc)
			return n, nil
		})
}

// NewPublish logs the final total and returns the published line.
func NewPublish() job.Descriptor {
	return job.NewUnitOfWork(PublishJob, job.Types(job.TypeOf[int]()), job.TypeOf[string](),
		func(_ context.Context, args []any) (any, error) {
			line := fmt.Sprintf("total words: %d", args[0].(int))
			logger.Infof("Publishing %s", line)
			return line, nil
		})
}

// NewWordCount fans out one count_words per document, then exports the counts and
// publishes the sum side by side.
func NewWordCount() job.Descriptor {
	return job.NewOrchestration(WordCountJob, job.Types(job.TypeOf[[]string]()), job.TypeOf[string](),
		func(oc job.Context, args []any) job.Step {
			docs := args[0].([]string)
			counts := make([]job.Step, len(docs))
			for i, doc := range docs {
				counts[i] = oc.Call(CountWordsJob, doc)
			}
			total := 0
			rows := make([]WordCountRow, len(docs))
			for i, s := range counts {
				if !s.Done() {
					return s
				}
				n := s.Value().(int)
				total += n
				rows[i] = WordCountRow{Document: docs[i], Words: int32(n)}
			}

			exported := oc.Call(ExportJob, oc.JobID().String(), rows)
			published := oc.Call(PublishJob, total)
			if !exported.Done() {
				return exported
			}
			return published.Then(func(line any) job.Step {
				return job.Completed(fmt.Sprintf("%s (%s)", line, exported.Value()))
			})
		})
}
