package constants

// Pipeline

const (
	StatsCaptureFrequencySeconds   = 5
	TimeFormatYearSeconds          = "20060102T150405" // used for human readable file names
	TimeFormatYearSecondsRegex     = "[0-9]{4}[0-9]{2}[0-9]{2}T[0-9]{6}"
	TimeFormatYearSecondsTZ        = "20060102T150405-0700" // a format that includes the time zone and is compatible with Oracle and Snowflake databases.
	GeniePageSizeDefault           = 100
	GenieThrottleMillisDefault     = 150
	GenieMaxRetriesDefault         = 5
	GenieRetryWaitMillis           = 500
	GenieRetryMaxWaitSeconds       = 30
	GenieRequestTimeoutSeconds     = 60
	GenieNextPageTokenField        = "next_page_token"
	RollupLookbackDaysDefault      = 90
	RollupShortLookbackDaysDefault = 30
	RollupTopNDefault              = 10
	TableMergeBatchSizeDefault     = 100
	TablePrefix                    = "genie_"
	RollupTablePrefix              = "g_"
	OracleConnectionDefaultParams  = "prefetch_rows=500"
	EmojiBang                      = "\U0001F4A5"
	EnvVarPrefix                   = "GP" // prefixed for environment variables in twelveFactorMode
	ConfigDirName                  = ".geniepipe"
	GpPluginOracle                 = "gp-oracle-plugin.so"
	GpPluginOdbc                   = "gp-odbc-plugin.so"
	EnvVarPluginDir                = EnvVarPrefix + "_PLUGIN_DIR"
	ActionFuncsCommandIngest       = "ingest"
	ActionFuncsCommandRollup       = "rollup"
	ActionFuncsCommandDDL          = "ddl"
	MissingKeyPolicyDrop           = "drop"
	MissingKeyPolicyFail           = "fail"
	MissingKeyPolicyQuarantine     = "quarantine"
	ConnectionTypeWorkspace        = "workspace"
	ConnectionTypeDatabricks       = "databricks"
	ConnectionTypeOracle           = "oracle"
	ConnectionTypeMockOracle       = "mockOracle"
	ConnectionTypeSnowflake        = "snowflake"
	ConnectionTypeNetezza          = "netezza"
	ConnectionTypeOdbc             = "odbc" // this is not a real connection type, since we need a suffix to provide the driver name like sqlserver.
	ConnectionTypeOdbcSqlServer    = "odbc+sqlserver"
	ConnectionTypeSqlServer        = "sqlserver"
	ConnectionTypePostgres         = "postgres"
	ConnectionTypeDuckDb           = "duckdb"
	ConnectionTypeCsv              = "csv"
	ConnectionTypeS3               = "s3"
)
