package global

const (
	DefaultDBName = "wheeldb"

	ConfigKeyDBType  = "db.type"
	ConfigKeyDBName  = "db.name"
	ConfigKeyAccount = "wheel.account"

	ConfigKeyWindowMinDelay = "wheel.window.min_delay"
	ConfigKeyWindowMaxDelay = "wheel.window.max_delay"
	ConfigKeyOutcomePolicy  = "wheel.outcome_policy"
	ConfigKeyHistoryLimit   = "wheel.history_limit"
	ConfigKeyMixRounds      = "wheel.mix_rounds"

	ConfigKeyPrivateKey       = "private_key"
	ConfigKeyBeaconPrivateKey = "beacon.private_key"
	ConfigKeyMetricsPort      = "metrics.port"
	ConfigKeyTraceTags        = "logger.trace_tags"
	ConfigKeyLogLevel         = "logger.level"
	ConfigKeyLogOutput        = "logger.output"
	ConfigKeyLogTimeLayout    = "logger.timelayout"
)

// trace tags used across components
const (
	TraceTagCommit   = "commit"
	TraceTagReveal   = "reveal"
	TraceTagDispatch = "dispatch"
	TraceTagStore    = "store"
)
