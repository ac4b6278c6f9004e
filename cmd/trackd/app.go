package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"pkt.systems/pslog"

	"pkt.systems/trackd"
)

func newRootCommand(logger pslog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "trackd",
		Short:         "Size-bounded distributed tracking map",
		Long:          "trackd maintains a size-bounded tracking table in ZooKeeper. Inserting into a full table evicts the oldest tenth of the entries first.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("store", trackd.DefaultStore, "store URL (mem:// or zk://host:port[,host:port][/dir])")
	flags.String("dir", trackd.DefaultDir, "directory node holding the tracking entries")
	flags.Int("max-size", trackd.DefaultMaxSize, "maximum tracked entries before eviction kicks in")
	flags.Duration("session-timeout", trackd.DefaultSessionTimeout, "ZooKeeper session timeout")
	flags.String("log-level", "", "override log level (trace, debug, info, warn, error)")

	viper.SetEnvPrefix("TRACKD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	flags.VisitAll(func(flag *pflag.Flag) {
		if err := viper.BindPFlag(flag.Name, flag); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag.Name, err))
		}
	})

	root.AddCommand(
		newPutCommand(logger),
		newGetCommand(logger),
		newRemoveCommand(logger),
		newListCommand(logger),
		newSizeCommand(logger),
		newClearCommand(logger),
		newVersionCommand(),
	)
	return root
}

func configFromFlags(logger pslog.Logger) trackd.Config {
	if level, ok := pslog.ParseLevel(strings.TrimSpace(viper.GetString("log-level"))); ok {
		logger = logger.LogLevel(level)
	}
	return trackd.Config{
		Store:          viper.GetString("store"),
		Dir:            viper.GetString("dir"),
		MaxSize:        viper.GetInt("max-size"),
		SessionTimeout: viper.GetDuration("session-timeout"),
		Logger:         logger,
	}
}

// openMap builds the bounded map from the resolved flags and hands back the
// store close function alongside it.
func openMap(logger pslog.Logger, opts ...func(*trackd.Config)) (*trackd.BoundedMap, func() error, error) {
	cfg := configFromFlags(logger)
	for _, opt := range opts {
		opt(&cfg)
	}
	return trackd.Open(cfg)
}

func closeQuietly(logger pslog.Logger, closeStore func() error) {
	if err := closeStore(); err != nil {
		logger.Warn("store close failed", "error", err)
	}
}
