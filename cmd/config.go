package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/autoeda/internal/analysis"
	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgInitForce   bool
	cfgInitLexicon bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set autoeda configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a dotted key, e.g. "analysis.correlation_method spearman" or
"analysis.text_analysis.ngram_range [1,3]". The value is parsed as YAML and the
result is validated before it is written.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := strings.ToLower(args[0]), args[1]
		base := cfg
		if base == nil {
			// an invalid file can be repaired key by key
			base = config.Default()
		}
		settings, err := toSettings(base)
		if err != nil {
			return err
		}
		var val any
		if err := yaml.Unmarshal([]byte(raw), &val); err != nil {
			return fmt.Errorf("parse value for %s: %w", key, err)
		}
		if val == nil {
			val = ""
		}
		setPath(settings, strings.Split(key, "."), val)

		next, warns, err := config.FromMap(settings)
		if err != nil {
			return err
		}
		for _, w := range warns {
			if strings.Contains(w, fmt.Sprintf("%q", key)) {
				return fmt.Errorf("unknown key: %s", key)
			}
		}
		if err := config.Save(next, cfgFile); err != nil {
			return err
		}
		cfg, cfgErr = next, nil
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, "config.yaml")
		}
		if config.Exists(path) && !cfgInitForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
		c := config.Default()
		if cfgInitLexicon {
			c.Analysis.TextAnalysis.Lexicon = analysis.DefaultLexicon()
		}
		if err := config.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&cfgInitForce, "force", false, "overwrite an existing config file")
	configInitCmd.Flags().BoolVar(&cfgInitLexicon, "with-lexicon", false, "write the built-in sentiment lexicon into the file for editing")
}

// toSettings turns a Config into the nested map FromMap accepts.
func toSettings(c *config.Config) (map[string]any, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return m, nil
}

func setPath(m map[string]any, parts []string, val any) {
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}
