package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-foldergen/pkg/service"
	"github.com/mattsolo1/grove-foldergen/pkg/tree"
)

var (
	cfgFile string
	dataDir string
	noColor bool
	debug   bool
)

// Settings is the effective configuration, as printed by the config command.
type Settings struct {
	ConfigFile string   `mapstructure:"-" yaml:"config_file,omitempty"`
	DataDir    string   `mapstructure:"data_dir" yaml:"data_dir"`
	DirPerm    string   `mapstructure:"dir_perm" yaml:"dir_perm"`
	FilePerm   string   `mapstructure:"file_perm" yaml:"file_perm"`
	ExecGlobs  []string `mapstructure:"exec_globs" yaml:"exec_globs"`
	DBMode0600 bool     `mapstructure:"db_0600" yaml:"db_0600"`
	Format     string   `mapstructure:"format" yaml:"format"`
	Color      bool     `mapstructure:"color" yaml:"color"`
	History    bool     `mapstructure:"history" yaml:"history"`
	Debounce   string   `mapstructure:"debounce" yaml:"debounce"`
}

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "foldergen")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("FOLDERGEN")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "foldergen"))
	viper.SetDefault("dir_perm", "0755")
	viper.SetDefault("file_perm", "0644")
	viper.SetDefault("exec_globs", []string{"*.sh"})
	viper.SetDefault("db_0600", true)
	viper.SetDefault("format", "structure")
	viper.SetDefault("color", true)
	viper.SetDefault("history", true)
	viper.SetDefault("debounce", "200ms")

	if dataDir != "" {
		viper.Set("data_dir", dataDir)
	}
	if noColor {
		viper.Set("color", false)
	}

	_ = viper.ReadInConfig()
}

// Current decodes the effective settings. Values from the environment are
// strings, so decoding is weakly typed.
func Current() (Settings, error) {
	var s Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return s, err
	}
	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return s, fmt.Errorf("failed to decode configuration: %w", err)
	}
	s.ConfigFile = viper.ConfigFileUsed()
	return s, nil
}

// UseColor reports whether output should be styled: color is enabled in the
// configuration and stdout is a terminal.
func UseColor() bool {
	if !viper.GetBool("color") {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewLogger returns the diagnostics logger: warnings on stderr, or
// everything with --debug.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if debug || viper.GetBool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func InitService(reg *tree.Registry, logger *logrus.Logger) (*service.Service, error) {
	s, err := Current()
	if err != nil {
		return nil, err
	}

	dirPerm, err := parsePerm(s.DirPerm)
	if err != nil {
		return nil, fmt.Errorf("dir_perm: %w", err)
	}
	filePerm, err := parsePerm(s.FilePerm)
	if err != nil {
		return nil, fmt.Errorf("file_perm: %w", err)
	}
	debounce, err := time.ParseDuration(s.Debounce)
	if err != nil {
		return nil, fmt.Errorf("debounce: %w", err)
	}

	config := &service.Config{
		DataDir:    s.DataDir,
		DirPerm:    dirPerm,
		FilePerm:   filePerm,
		ExecGlobs:  s.ExecGlobs,
		DBMode0600: s.DBMode0600,
		History:    s.History,
		Debounce:   debounce,
	}

	svc, err := service.New(config, reg, afero.NewOsFs(), logger)
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file (default is $HOME/.config/foldergen/config.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the build history")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "log filesystem operations to stderr")
}

// parsePerm reads an octal permission such as "0755" or "755".
func parsePerm(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid permission %q: %w", s, err)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("invalid permission %q: out of range", s)
	}
	return os.FileMode(v), nil
}
