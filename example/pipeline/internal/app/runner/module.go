package runner

import "go.uber.org/fx"

// DefaultDocuments is used when the application supplies no Documents.
var DefaultDocuments = Documents{
	"the quick brown fox",
	"jumps over the lazy dog",
	"durable jobs survive restarts",
}

// Module starts the pipeline on application start.
var Module = fx.Options(
	fx.Invoke(Register),
)
