// Package config loads the panel configuration from TOML files and command
// line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"

	"github.com/kriansa/drive-pi/internal/log"
)

const (
	// SystemConfigPath is the system-wide config file
	SystemConfigPath = "/etc/drive-pi/config.toml"
	// LocalConfigPath is looked up in the working directory, last
	LocalConfigPath = "config.toml"
	// DefaultMountPath is the default base directory for mounting devices
	DefaultMountPath = "./"
	// DefaultMode drives the real panel hardware
	DefaultMode = "pi"
	// DefaultEnumerator is the default device listing backend
	DefaultEnumerator = "lsblk"
	// DefaultMounter is the default mount backend
	DefaultMounter = "exec"
	// DefaultDebounce is how long a button is ignored after a press
	DefaultDebounce = 200 * time.Millisecond
)

// DefaultPins are the GPIO lines wired to buttons A, B, C and D.
var DefaultPins = []string{"GPIO4", "GPIO14", "GPIO15", "GPIO18"}

// Config holds the panel configuration
type Config struct {
	// MountPath is the mount root; devices are mounted at MountPath/<name>
	MountPath string `toml:"mount_path" validate:"required,ne=/"`
	// Mode is "pi" (GPIO buttons and OLED), "simulator" (terminal) or
	// "headless" (control socket only)
	Mode string `toml:"mode" validate:"oneof=pi simulator headless"`
	// Enumerator lists devices: "lsblk" or "udisks"
	Enumerator string `toml:"enumerator" validate:"oneof=lsblk udisks"`
	// Mounter mounts devices: "exec" (mount/umount) or "syscall"
	Mounter string `toml:"mounter" validate:"oneof=exec syscall"`
	// SocketPath is the control socket, disabled when empty
	SocketPath string `toml:"socket" validate:"required_if=Mode headless"`
	// LogFile, when set, receives the logs with size based rotation
	LogFile string `toml:"log_file"`

	GPIO    GPIOConfig    `toml:"gpio"`
	Display DisplayConfig `toml:"display"`
}

// GPIOConfig configures the buttons
type GPIOConfig struct {
	// Pins names the lines for buttons A, B, C and D, in that order
	Pins []string `toml:"pins" validate:"len=4,dive,required"`
	// Debounce is the minimum time between two presses of one button
	Debounce time.Duration `toml:"debounce"`
}

// DisplayConfig configures the OLED display
type DisplayConfig struct {
	// I2CBus is the bus name or number, empty for the first available
	I2CBus string `toml:"i2c_bus"`
}

// SearchPaths returns the config file locations in lookup order
func SearchPaths() []string {
	return []string{
		SystemConfigPath,
		filepath.Join(xdg.ConfigHome, "drive-pi", "config.toml"),
		LocalConfigPath,
	}
}

// Load loads configuration from a TOML file
// Returns an empty config if the file doesn't exist
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Find loads the first config file that exists among paths. It never fails:
// a file that can't be parsed is reported and the empty config is used, so
// the defaults apply. The returned path is empty if no file was used.
func Find(paths []string) (*Config, string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Warn("config file not accessible", "path", path, "error", err)
			}
			continue
		}

		cfg, err := Load(path)
		if err != nil {
			log.Warn("ignoring invalid config file, using defaults", "path", path, "error", err)
			return &Config{}, ""
		}
		return cfg, path
	}

	return &Config{}, ""
}

// Merge merges CLI flags into the config, with CLI flags taking precedence
// over config file values. Empty CLI values are ignored.
func (c *Config) Merge(mountPath, mode, enumerator, mounter, socketPath, logFile string) {
	if mountPath != "" {
		c.MountPath = mountPath
	}
	if mode != "" {
		c.Mode = mode
	}
	if enumerator != "" {
		c.Enumerator = enumerator
	}
	if mounter != "" {
		c.Mounter = mounter
	}
	if socketPath != "" {
		c.SocketPath = socketPath
	}
	if logFile != "" {
		c.LogFile = logFile
	}
}

// ApplyDefaults applies default values for any unset fields
func (c *Config) ApplyDefaults() {
	if c.MountPath == "" {
		c.MountPath = DefaultMountPath
	}
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	if c.Enumerator == "" {
		c.Enumerator = DefaultEnumerator
	}
	if c.Mounter == "" {
		c.Mounter = DefaultMounter
	}
	if len(c.GPIO.Pins) == 0 {
		c.GPIO.Pins = append([]string(nil), DefaultPins...)
	}
	if c.GPIO.Debounce == 0 {
		c.GPIO.Debounce = DefaultDebounce
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: %q fails %q", fe.Namespace(), fmt.Sprint(fe.Value()), fe.ActualTag())
		}
		return fmt.Errorf("validate config: %w", err)
	}

	root, err := c.MountRoot()
	if err != nil {
		return err
	}
	if root == "/" {
		return fmt.Errorf("mount_path must not be the filesystem root")
	}

	return nil
}

// Flags are the command line values that override the config file. Empty
// fields are unset.
type Flags struct {
	MountPath  string
	Mode       string
	Enumerator string
	Mounter    string
	SocketPath string
	LogFile    string
}

// Resolve merges flags over the config loaded from source, applies defaults
// and validates the result. Invalid values coming from the file are reported
// and dropped in favor of the defaults; only invalid flags are an error.
func Resolve(file *Config, source string, flags Flags) (*Config, error) {
	cfg := file.resolve(flags)
	err := cfg.Validate()
	if err == nil {
		return cfg, nil
	}

	fallback := (&Config{}).resolve(flags)
	if ferr := fallback.Validate(); ferr != nil {
		return nil, fmt.Errorf("invalid config: %w", ferr)
	}

	log.Warn("ignoring invalid config file, using defaults", "path", source, "error", err)
	return fallback, nil
}

func (c *Config) resolve(flags Flags) *Config {
	cfg := *c
	cfg.Merge(flags.MountPath, flags.Mode, flags.Enumerator, flags.Mounter, flags.SocketPath, flags.LogFile)
	cfg.ApplyDefaults()
	return &cfg
}

// MountRoot returns the mount path as an absolute, clean path with symlinks
// resolved when it already exists. Device mountpoints reported by the system
// are compared against it.
func (c *Config) MountRoot() (string, error) {
	abs, err := filepath.Abs(c.MountPath)
	if err != nil {
		return "", fmt.Errorf("resolve mount path: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}
