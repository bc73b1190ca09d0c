package cmd

import (
	"os"

	"github.com/salmonumbrella/reshape-cli/internal/pipeline"
)

var (
	envGet       = os.Getenv
	stdinHasData = inputHasData
	loadPipeline = pipeline.Load
)
