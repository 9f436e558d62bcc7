package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the full set of recognized options. It is resolved once at the
// CLI boundary and passed by value into every profiler, classifier and analyzer.
type Config struct {
	TypeInference TypeInference `mapstructure:"type_inference" yaml:"type_inference"`
	Analysis      Analysis      `mapstructure:"analysis" yaml:"analysis"`
	Sampling      Sampling      `mapstructure:"sampling" yaml:"sampling"`
	Input         Input         `mapstructure:"input" yaml:"input"`
	History       History       `mapstructure:"history" yaml:"history"`
	// Workers bounds per-column parallelism; 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

type TypeInference struct {
	CategoricalThreshold       float64  `mapstructure:"categorical_threshold" yaml:"categorical_threshold"`
	CategoricalMaxDistinct     int      `mapstructure:"categorical_max_distinct" yaml:"categorical_max_distinct"`
	NumericDetectionStrictness string   `mapstructure:"numeric_detection_strictness" yaml:"numeric_detection_strictness"`
	DateInference              bool     `mapstructure:"date_inference" yaml:"date_inference"`
	IDDetection                bool     `mapstructure:"id_detection" yaml:"id_detection"`
	IDUniquenessThreshold      float64  `mapstructure:"id_uniqueness_threshold" yaml:"id_uniqueness_threshold"`
	BooleanThreshold           float64  `mapstructure:"boolean_threshold" yaml:"boolean_threshold"`
	DateThreshold              float64  `mapstructure:"date_threshold" yaml:"date_threshold"`
	TextTokenThreshold         float64  `mapstructure:"text_token_threshold" yaml:"text_token_threshold"`
	TextMinDistinctRatio       float64  `mapstructure:"text_min_distinct_ratio" yaml:"text_min_distinct_ratio"`
	BooleanTrueTokens          []string `mapstructure:"boolean_true_tokens" yaml:"boolean_true_tokens"`
	BooleanFalseTokens         []string `mapstructure:"boolean_false_tokens" yaml:"boolean_false_tokens"`
	DateFormats                []string `mapstructure:"date_formats" yaml:"date_formats"`
	// Numeric locale. Empty means auto-detect per value.
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	// SampleValues caps the distinct example values kept on a profile.
	SampleValues int `mapstructure:"sample_values" yaml:"sample_values"`
}

type Analysis struct {
	CorrelationMethod          string           `mapstructure:"correlation_method" yaml:"correlation_method"`
	StrongCorrelationThreshold float64          `mapstructure:"strong_correlation_threshold" yaml:"strong_correlation_threshold"`
	OutlierDetection           OutlierDetection `mapstructure:"outlier_detection" yaml:"outlier_detection"`
	TextAnalysis               TextAnalysis     `mapstructure:"text_analysis" yaml:"text_analysis"`
	Categorical                Categorical      `mapstructure:"categorical" yaml:"categorical"`
}

type OutlierDetection struct {
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
	Method    string  `mapstructure:"method" yaml:"method"` // iqr|zscore|mad
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	// Joint flags rows outside both columns' bounds for each numeric pair.
	Joint bool `mapstructure:"joint" yaml:"joint"`
}

type TextAnalysis struct {
	MaxFeatures int                `mapstructure:"max_features" yaml:"max_features"`
	MinDF       int                `mapstructure:"min_df" yaml:"min_df"`
	NgramRange  []int              `mapstructure:"ngram_range" yaml:"ngram_range"`
	Lexicon     map[string]float64 `mapstructure:"lexicon" yaml:"lexicon,omitempty"`
}

type Categorical struct {
	TopK int `mapstructure:"top_k" yaml:"top_k"`
}

type Sampling struct {
	Enabled     bool  `mapstructure:"enabled" yaml:"enabled"`
	MaxRows     int   `mapstructure:"max_rows" yaml:"max_rows"`
	RandomState int64 `mapstructure:"random_state" yaml:"random_state"`
}

type Input struct {
	NullValues []string `mapstructure:"null_values" yaml:"null_values"`
	// Delimiter for CSV. Empty picks by extension (',' or '\t').
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

type History struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// defaults is the single source of default values and of recognized keys.
var defaults = map[string]any{
	"type_inference.categorical_threshold":        0.1,
	"type_inference.categorical_max_distinct":     10,
	"type_inference.numeric_detection_strictness": "medium",
	"type_inference.date_inference":               true,
	"type_inference.id_detection":                 true,
	"type_inference.id_uniqueness_threshold":      0.95,
	"type_inference.boolean_threshold":            0.98,
	"type_inference.date_threshold":               0.90,
	"type_inference.text_token_threshold":         3.0,
	"type_inference.text_min_distinct_ratio":      0.5,
	"type_inference.boolean_true_tokens":          []string{"true", "yes", "1"},
	"type_inference.boolean_false_tokens":         []string{"false", "no", "0"},
	"type_inference.date_formats": []string{
		"2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
		"2006-01-02", "2006/01/02", "01/02/2006", "1/2/2006 15:04:05", "1/2/2006 15:04", "1/2/2006",
		"02-Jan-2006", "Jan 2, 2006", "2 Jan 2006", "2006-01",
	},
	"type_inference.decimal_separator":   "",
	"type_inference.thousands_separator": "",
	"type_inference.sample_values":       10,

	"analysis.correlation_method":            "pearson",
	"analysis.strong_correlation_threshold":  0.7,
	"analysis.outlier_detection.enabled":     true,
	"analysis.outlier_detection.method":      "iqr",
	"analysis.outlier_detection.threshold":   1.5,
	"analysis.outlier_detection.joint":       true,
	"analysis.text_analysis.max_features":    100,
	"analysis.text_analysis.min_df":          2,
	"analysis.text_analysis.ngram_range":     []int{1, 2},
	"analysis.text_analysis.lexicon":         map[string]float64{},
	"analysis.categorical.top_k":             20,

	"sampling.enabled":      true,
	"sampling.max_rows":     10000,
	"sampling.random_state": 42,

	"input.null_values": []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "-"},
	"input.delimiter":   "",

	"history.enabled": false,
	"history.path":    "",

	"workers": 0,
}

// mapKeys hold user-defined sub-keys; anything below them is recognized.
var mapKeys = []string{"analysis.text_analysis.lexicon"}

// StrictnessThresholds maps numeric_detection_strictness to the numeric ratio threshold.
var StrictnessThresholds = map[string]float64{
	"strict": 0.99,
	"medium": 0.90,
	"loose":  0.75,
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Default returns the documented defaults.
func Default() *Config {
	c, err := decode(newViper())
	if err != nil {
		// defaults are static; a decode failure is a programming error
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return c
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A missing default-location file is
// not an error; an explicit cfgFile that cannot be read is. The returned
// warnings list unknown keys, which are otherwise ignored.
func Load(cfgFile string) (*Config, []string, error) {
	v := newViper()
	v.SetEnvPrefix("AUTOEDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	c, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	return c, unknownKeys(v), nil
}

// FromMap builds a configuration from nested settings merged over defaults.
func FromMap(settings map[string]any) (*Config, []string, error) {
	v := newViper()
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, nil, fmt.Errorf("merge config: %w", err)
	}
	c, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	return c, unknownKeys(v), nil
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Analysis.TextAnalysis.Lexicon == nil {
		c.Analysis.TextAnalysis.Lexicon = map[string]float64{}
	}
	return &c, nil
}

func unknownKeys(v *viper.Viper) []string {
	var out []string
	for _, k := range v.AllKeys() {
		if _, ok := defaults[k]; ok {
			continue
		}
		known := false
		for _, m := range mapKeys {
			if strings.HasPrefix(k, m+".") {
				known = true
				break
			}
		}
		if !known {
			out = append(out, fmt.Sprintf("unknown config key %q ignored", k))
		}
	}
	sort.Strings(out)
	return out
}

// Dir returns ~/.autoeda, the default home of config.yaml and history.db.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".autoeda"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.autoeda/config.yaml, creating the directory if necessary.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// HistoryPath resolves the SQLite history location.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// NumericThreshold returns the numeric ratio threshold for the configured strictness.
func (c *Config) NumericThreshold() float64 {
	return StrictnessThresholds[c.TypeInference.NumericDetectionStrictness]
}
