package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/config"
	"github.com/sadopc/mirror/internal/store"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "Show or change configuration",
	Long: `Show or change the settings in config.json.

Keys: ` + strings.Join(config.Keys(), ", ") + `

Environment variables ` + config.EnvBackendURL + `, ` + config.EnvToken + ` and ` + config.EnvDB + `
override the file. A backend URL saved from the dashboard's settings tab
takes precedence over both.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrinter(cmd)
		path, err := configPath(cmd)
		if err != nil {
			return err
		}
		p.header("Config " + path)
		for _, kv := range cfg.Entries() {
			v := kv[1]
			if v == "" {
				v = p.style(dimStyle, "(unset)")
			}
			p.field(kv[0], v)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		saved, err := st.GetAllSettings()
		if err != nil {
			return err
		}
		p.header("Saved in the database")
		for _, kv := range saved {
			v := kv.Value
			if kv.Key == store.KeyToken {
				v = config.MaskToken(v)
			}
			if v == "" {
				v = p.style(dimStyle, "(unset)")
			}
			p.field(kv.Key, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath(cmd)
		if err != nil {
			return err
		}
		file := config.LoadFile(path)
		if err := file.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(path, file); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	p, err := config.DefaultPath()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return p, nil
}
