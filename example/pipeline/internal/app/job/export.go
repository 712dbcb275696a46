package job

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/durable/pkg/durable/adapter/storage"
	_ "github.com/tigerroll/durable/pkg/durable/adapter/storage/gcs"
	_ "github.com/tigerroll/durable/pkg/durable/adapter/storage/local"
	"github.com/tigerroll/durable/pkg/durable/core/config"
	"github.com/tigerroll/durable/pkg/durable/core/job"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

const (
	ExportJob = "export_counts"
	// ExportStorageRef names the storage section the counts are exported to.
	ExportStorageRef = "export"
	exportBaseDir    = "word_count"
)

// WordCountRow is one exported line.
type WordCountRow struct {
	Document string `json:"document" parquet:"name=document,type=BYTE_ARRAY,convertedtype=UTF8"`
	Words    int32  `json:"words" parquet:"name=words,type=INT32"`
}

// ExportObjectName is where the counts of run runID are written. It depends only on the
// run, so a re-executed export overwrites its own earlier upload.
func ExportObjectName(runID string) string {
	return path.Join(exportBaseDir, "run="+runID, "word_count.parquet")
}

// NewExportCounts writes the rows of one run as a Parquet file to the export storage.
func NewExportCounts(cfg *config.Config) job.Descriptor {
	return job.NewUnitOfWork(ExportJob, job.Types(job.TypeOf[string](), job.TypeOf[[]WordCountRow]()), job.TypeOf[string](),
		func(ctx context.Context, args []any) (any, error) {
			runID, rows := args[0].(string), args[1].([]WordCountRow)

			buf := new(bytes.Buffer)
			pw, err := writer.NewParquetWriterFromWriter(buf, new(WordCountRow), 1)
			if err != nil {
				return nil, exception.NewDurableError("export", "failed to create parquet writer", err)
			}
			pw.CompressionType = parquet.CompressionCodec_SNAPPY
			for _, row := range rows {
				if err := pw.Write(row); err != nil {
					return nil, exception.NewDurableError("export", "failed to write parquet row", err)
				}
			}
			if err := pw.WriteStop(); err != nil {
				return nil, exception.NewDurableError("export", "failed to finalize parquet file", err)
			}

			conn, err := storage.Open(ctx, cfg, ExportStorageRef)
			if err != nil {
				return nil, err
			}
			defer conn.Close()
			objectName := ExportObjectName(runID)
			logger.Debugf("Uploading %d bytes to %s/%s", buf.Len(), ExportStorageRef, objectName)
			if err := conn.Upload(ctx, conn.Config().BucketName, objectName, buf, "application/octet-stream"); err != nil {
				return nil, fmt.Errorf("upload %s: %w", objectName, err)
			}
			return objectName, nil
		})
}

// NewExportCountsFactory binds the export job to the application config.
func NewExportCountsFactory(cfg *config.Config) job.Factory {
	return func() job.Descriptor { return NewExportCounts(cfg) }
}
