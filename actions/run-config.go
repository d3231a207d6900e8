package actions

import (
	"github.com/relloyd/geniepipe/constants"
)

// IngestSettings are the tunables of an ingest run.
// They can be supplied as flags, config file defaults, 12-factor env vars or in the body of a web request.
type IngestSettings struct {
	PageSize          int    `json:"pageSize"`
	ThrottleMillis    int    `json:"throttleMillis"`
	MaxRetries        int    `json:"maxRetries"`
	CommitBatchSize   int    `json:"commitBatchSize"`
	MissingKeyPolicy  string `json:"missingKeyPolicy"`
	SpaceIds          string `json:"spaceIds,omitempty"`
	SpaceFilter       string `json:"spaceFilter,omitempty"`
	LookbackDays      int    `json:"lookbackDays"`
	ShortLookbackDays int    `json:"shortLookbackDays"`
	TopN              int    `json:"topN"`
	SkipRollups       bool   `json:"skipRollups"`
	ExecuteDDL        bool   `json:"executeDDL"`
}

// NewDefaultIngestSettings returns the built-in defaults.
func NewDefaultIngestSettings() IngestSettings {
	return IngestSettings{
		PageSize:          constants.GeniePageSizeDefault,
		ThrottleMillis:    constants.GenieThrottleMillisDefault,
		MaxRetries:        constants.GenieMaxRetriesDefault,
		CommitBatchSize:   constants.TableMergeBatchSizeDefault,
		MissingKeyPolicy:  constants.MissingKeyPolicyQuarantine,
		LookbackDays:      constants.RollupLookbackDaysDefault,
		ShortLookbackDays: constants.RollupShortLookbackDaysDefault,
		TopN:              constants.RollupTopNDefault,
	}
}

// RunConfig holds the generic inputs of the ingest, rollup and ddl commands.
// Action setup functions convert it to an action specific config.
type RunConfig struct {
	// Connections
	SrcAndTgtConnections
	ArchiveString ConnectionObject // optional s3 connection for raw pages.
	// Generic
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic          bool
	StatsDumpFrequencySeconds int
	ExportConfigType          string
	// Ingest specific
	IngestSettings
}
