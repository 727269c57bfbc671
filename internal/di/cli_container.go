package di

import (
	"flag"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mailgun-routes/internal/adapters/cli"
	"github.com/mikey/mailgun-routes/internal/config"
	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/mikey/mailgun-routes/internal/logging"
	"github.com/mikey/mailgun-routes/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Policy flags
	SpamDetection    string
	SpamScore        float64
	DKIMExclusions   string
	SPFExclusions    string
	BlockedDomains   string
	SPFNeutralPasses bool

	// Input flags
	InputFile  string
	From       string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Policy flags
	flag.StringVar(&flags.SpamDetection, "spam-detection", "flag", "Spam detection mode (none, flag, score)")
	flag.Float64Var(&flags.SpamScore, "spam-score", 5.0, "Spam score threshold for score mode")
	flag.StringVar(&flags.DKIMExclusions, "dkim-exclusions", "", "Pipe-separated domains exempt from a missing DKIM result")
	flag.StringVar(&flags.SPFExclusions, "spf-exclusions", "", "Pipe-separated domains exempt from a missing SPF result")
	flag.StringVar(&flags.BlockedDomains, "blocked-domains", "", "Pipe-separated blocked sender domains")
	flag.BoolVar(&flags.SPFNeutralPasses, "spf-neutral-passes", false, "Accept non-pass, non-fail SPF results")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input MIME file (use stdin if not specified)")
	flag.StringVar(&flags.From, "from", "", "Sender address as the relay would post it")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides policy flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			v := config.NewEmptyViper()
			v.SetConfigFile(flags.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", v.ConfigFileUsed()))
			return config.NewFromViper(v), nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register checker
	if err := container.Provide(func(
		gate *core.Gate,
		policy core.PolicyProvider,
		tp *utils.TextProcessor,
		logger *zap.Logger,
		flags *CLIFlags,
	) *cli.Checker {
		return cli.NewChecker(gate, policy, tp, logger, os.Stdout, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("mailgun.spam_detection", flags.SpamDetection)
	v.Set("mailgun.spam_score", flags.SpamScore)
	v.Set("mailgun.dkim_domain_exclusions", flags.DKIMExclusions)
	v.Set("mailgun.spf_domain_exclusions", flags.SPFExclusions)
	v.Set("mailgun.blocked_domains", flags.BlockedDomains)
	v.Set("mailgun.spf_neutral_passes", flags.SPFNeutralPasses)
	v.Set("mailgun.log_rejections", flags.Verbose)

	return config.NewFromViper(v)
}
