// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 2:10:12 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ternarybob/policyqa/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	endpointURL  = flag.String("endpoint", "", "Question-answering endpoint URL (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: policyqa [flags] [serve | ask [question] | version]\n\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		printVersion()
		os.Exit(0)
	}

	command := "serve"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	if command == "version" {
		printVersion()
		os.Exit(0)
	}

	// Merge port flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("policyqa.toml"); err == nil {
			configFiles = append(configFiles, "policyqa.toml")
		} else if _, err := os.Stat("deployments/local/policyqa.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/policyqa.toml")
		}
	}

	// Startup sequence: defaults -> files -> .env -> env -> CLI flags
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		common.GetLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, finalPort, *serverHost, *endpointURL)

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	switch command {
	case "serve":
		logger := common.InitLogger(config)
		runServe(config, logger)
	case "ask":
		os.Exit(runAsk(config, args))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		flag.Usage()
		os.Exit(2)
	}
}
