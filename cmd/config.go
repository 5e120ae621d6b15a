package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"drive-json-publisher/infrastructure/config"

	"github.com/spf13/cobra"
)

// OutputWriter is where config commands print
type OutputWriter interface {
	io.Writer
}

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration entries",
	Long: `Show or change settings in the configuration file.

Examples:
  drive-json-publisher config show
  drive-json-publisher config set server.port 3000
  drive-json-publisher config set metrics.enabled false`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// --- SHOW command ---

var configShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show all settings, or one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	key := ""
	if len(args) == 1 {
		key = args[0]
	}
	return RunConfigShowWithDependencies(cfg, cfgFile, key, DefaultOutput)
}

// RunConfigShowWithDependencies prints key, or every key when key is empty
func RunConfigShowWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	if key != "" {
		value, err := mgr.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, value)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, k := range mgr.Keys() {
		value, _ := mgr.Get(k)
		fmt.Fprintf(w, "%s\t%s\n", k, value)
	}
	return w.Flush()
}

// --- SET command ---

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save the config file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	return RunConfigSetWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
}

// RunConfigSetWithDependencies updates key and writes configPath
func RunConfigSetWithDependencies(cfg *config.Config, configPath, key, value string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	if err := mgr.Set(key, value); err != nil {
		return err
	}

	current, _ := mgr.Get(key)
	fmt.Fprintf(out, "Set %s = %s\n", key, current)
	return nil
}
