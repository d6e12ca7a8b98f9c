// Package cli provides the Cobra-based CLI for the product catalog.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"productcatalog/domain"
	"productcatalog/service"
	"productcatalog/store"
)

var (
	rootCmd = &cobra.Command{
		Use:          "catalog",
		Short:        "Product catalog and order management",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg := viper.GetString("config"); cfg != "" {
				viper.SetConfigFile(cfg)
				if err := viper.ReadInConfig(); err != nil {
					return err
				}
			}

			slog.SetDefault(slog.New(newLogHandler(
				os.Stderr,
				viper.GetString("log-format"),
				viper.GetString("log-level"),
			)))

			// tests inject a backend; the shell reuses the one it opened
			if backend == nil {
				kind := viper.GetString("store")
				b, err := store.NewStore(kind, storeLocation(kind))
				if err != nil {
					return err
				}
				backend = b
			}
			services = service.New(backend)
			return nil
		},
	}

	backend  store.Backend
	services *service.Services
)

// storeLocation picks the flag that addresses the chosen backend.
func storeLocation(kind string) string {
	switch kind {
	case "postgres", "pg":
		return viper.GetString("store-dsn")
	default:
		return viper.GetString("store-file")
	}
}

func newLogHandler(w io.Writer, format, level string) slog.Handler {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func init() {
	rootCmd.PersistentFlags().String("store", "memory", "store backend: memory|file|sqlite|postgres")
	rootCmd.PersistentFlags().String("store-file", "data/catalog.json", "file or sqlite store path")
	rootCmd.PersistentFlags().String("store-dsn", "", "postgres connection string")
	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text|json")

	for _, name := range []string{"store", "store-file", "store-dsn", "config", "log-level", "log-format"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	viper.SetEnvPrefix("CATALOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// shell
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(cmd.InOrStdin())
			for {
				fmt.Fprint(cmd.OutOrStdout(), "catalog> ")
				line, err := r.ReadString('\n')
				line = strings.TrimSpace(line)
				if line == "exit" || line == "quit" {
					return nil
				}
				if line != "" && line != "shell" {
					args := strings.Fields(line)
					rootCmd.SetArgs(args)
					if err := rootCmd.Execute(); err != nil {
						fmt.Fprintln(os.Stderr, err)
					}
					rootCmd.SetArgs(nil)
					if sub, _, err := rootCmd.Find(args); err == nil {
						resetFlags(sub)
					}
				}
				if err != nil {
					return nil
				}
			}
		},
	}
	rootCmd.AddCommand(shellCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// resetFlags restores a command's local flags to their defaults so values do
// not leak into the next command run in the same process.
func resetFlags(cmd *cobra.Command) {
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// reportNotFound prints not-found errors to stderr and swallows them, so a
// lookup miss does not fail the shell session.
func reportNotFound(err error) error {
	if domain.IsNotFound(err) {
		fmt.Fprintln(os.Stderr, err)
		return nil
	}
	return err
}

// confirm asks before destructive commands unless force is set.
func confirm(cmd *cobra.Command, force bool, what string) bool {
	if force {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Delete %s? (y/N): ", what)
	var resp string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &resp); err != nil || (resp != "y" && resp != "Y") {
		fmt.Fprintln(cmd.OutOrStdout(), "aborted")
		return false
	}
	return true
}
