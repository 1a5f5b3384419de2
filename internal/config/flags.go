package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagTo       = flag.String("to", "", "Output format: dat, mesh or obj")
	flagOut      = flag.String("out", "", "Output directory")
	flagWorkers  = flag.Int("workers", 0, "Number of files converted in parallel")
	flagReport   = flag.String("report", "", "Write a YAML report of all results")
	flagEncoding = flag.String("encoding", "", "Source text encoding (utf-8, macroman, windows-1252, latin1, euc-kr)")
	flagProbe    = flag.Bool("probe-textures", false, "Read texture files to find their size")
	flagLogFile  = flag.String("log-file", "", "Also log to this rotating file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Files returns the positional arguments left after flag parsing.
func Files() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagTo != "" {
		cfg.Convert.Target = *flagTo
	}
	if *flagOut != "" {
		cfg.Convert.OutputDir = *flagOut
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
	if *flagReport != "" {
		cfg.Batch.Report = *flagReport
	}
	if *flagEncoding != "" {
		cfg.Convert.Encoding = *flagEncoding
	}
	if *flagProbe {
		cfg.Convert.ProbeTextures = true
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
