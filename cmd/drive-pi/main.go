package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/kriansa/drive-pi/internal/command"
	"github.com/kriansa/drive-pi/internal/config"
	"github.com/kriansa/drive-pi/internal/control"
	"github.com/kriansa/drive-pi/internal/device"
	"github.com/kriansa/drive-pi/internal/display"
	"github.com/kriansa/drive-pi/internal/input"
	"github.com/kriansa/drive-pi/internal/log"
	"github.com/kriansa/drive-pi/internal/mount"
	"github.com/kriansa/drive-pi/internal/panel"
	"github.com/kriansa/drive-pi/internal/session"
	"github.com/kriansa/drive-pi/internal/simulator"
	"github.com/kriansa/drive-pi/internal/syncutil"
	"github.com/kriansa/drive-pi/internal/teardown"
	"github.com/kriansa/drive-pi/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:  "drive-pi",
		Usage: "A button panel to mount and unmount removable drives",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file path (replaces the default search list)",
			},
			&cli.StringFlag{
				Name:    "mount-path",
				Aliases: []string{"m"},
				Usage:   "Base directory for mounting devices",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Panel mode: pi, simulator or headless",
			},
			&cli.StringFlag{
				Name:  "enumerator",
				Usage: "Device listing backend: lsblk or udisks",
			},
			&cli.StringFlag{
				Name:  "mounter",
				Usage: "Mount backend: exec or syscall",
			},
			&cli.StringFlag{
				Name:    "socket",
				Aliases: []string{"s"},
				Usage:   "Unix socket path for the control interface",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file, rotated by size",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"V"},
				Usage:   "Print version information",
			},
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Print the devices the panel would offer",
				Action: list,
			},
			{
				Name:   "cleanup",
				Usage:  "Unmount everything under the mount path and remove leftover mount points",
				Action: cleanup,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	// Handle version flag
	if cmd.Bool("version") {
		fmt.Println(version.String())
		return nil
	}

	cfg, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	root, err := cfg.MountRoot()
	if err != nil {
		return err
	}

	log.Info("starting panel",
		"version", version.Version,
		"mode", cfg.Mode,
		"mount_path", root,
		"enumerator", cfg.Enumerator,
		"mounter", cfg.Mounter,
		"socket", cfg.SocketPath,
		"deadlock_detection", syncutil.DeadlockEnabled,
	)

	store, err := newStorage(cfg, root)
	if err != nil {
		return err
	}
	defer store.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := session.New(root, store.enumerator, store.controller, store.teardown)
	// Teardown runs however the loop ends, and must not be cut short by the
	// signal that ended it
	defer sess.Close(context.WithoutCancel(ctx))

	disp, sources, err := newFrontend(cfg, sess)
	if err != nil {
		return err
	}
	defer func() {
		if err := disp.Close(); err != nil {
			log.Warn("failed to close display", "error", err)
		}
	}()

	if err := panel.New(sess, disp, sources...).Run(ctx); err != nil {
		return fmt.Errorf("panel: %w", err)
	}

	log.Info("panel stopped")
	return nil
}

func list(ctx context.Context, cmd *cli.Command) error {
	cfg, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	root, err := cfg.MountRoot()
	if err != nil {
		return err
	}

	store, err := newStorage(cfg, root)
	if err != nil {
		return err
	}
	defer store.close()

	devices, err := store.enumerator.List(ctx)
	if err != nil {
		return err
	}

	return printDevices(os.Stdout, devices)
}

func printDevices(out io.Writer, devices []device.Device) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tFSTYPE\tMOUNTED\tPATH")
	for _, d := range devices {
		mounted := "no"
		if d.Mounted {
			mounted = "yes"
		}
		fstype := d.FSType
		if fstype == "" {
			fstype = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Name, d.Size, fstype, mounted, d.MountPath)
	}
	return w.Flush()
}

func cleanup(ctx context.Context, cmd *cli.Command) error {
	cfg, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	root, err := cfg.MountRoot()
	if err != nil {
		return err
	}

	store, err := newStorage(cfg, root)
	if err != nil {
		return err
	}
	defer store.close()

	store.teardown.Run(ctx)
	return nil
}

// setup loads the configuration and configures logging
func setup(cmd *cli.Command) (*config.Config, func(), error) {
	verbose := cmd.Bool("verbose")

	// Setup logging
	log.Setup(verbose)

	// Load config file
	paths := config.SearchPaths()
	if cmd.IsSet("config") {
		paths = []string{cmd.String("config")}
	}
	fileCfg, used := config.Find(paths)
	if used != "" {
		log.Debug("loaded config file", "path", used)
	}

	// CLI flags take precedence; bad file values fall back to defaults
	cfg, err := config.Resolve(fileCfg, used, config.Flags{
		MountPath:  cmd.String("mount-path"),
		Mode:       cmd.String("mode"),
		Enumerator: cmd.String("enumerator"),
		Mounter:    cmd.String("mounter"),
		SocketPath: cmd.String("socket"),
		LogFile:    cmd.String("log-file"),
	})
	if err != nil {
		return nil, nil, err
	}

	if cfg.LogFile == "" {
		if cfg.Mode == "simulator" && cmd.Name == "drive-pi" {
			// The terminal belongs to the simulator
			log.Setup(verbose, io.Discard)
		}
		return cfg, func() {}, nil
	}

	logFile := log.File(cfg.LogFile)
	if cfg.Mode == "simulator" && cmd.Name == "drive-pi" {
		log.Setup(verbose, logFile)
	} else {
		log.Setup(verbose, log.Console(), logFile)
	}

	return cfg, func() { _ = logFile.Close() }, nil
}

// storage holds the device side of the panel
type storage struct {
	enumerator device.Enumerator
	controller *mount.Controller
	teardown   *teardown.Manager
}

func newStorage(cfg *config.Config, root string) (*storage, error) {
	exec := &command.RealExecutor{}

	enumerator, err := device.NewEnumerator(cfg.Enumerator, root, exec)
	if err != nil {
		return nil, fmt.Errorf("create enumerator: %w", err)
	}

	mounter, err := mount.NewMounter(cfg.Mounter, root, exec)
	if err != nil {
		return nil, fmt.Errorf("create mounter: %w", err)
	}

	fs := afero.NewOsFs()
	controller := mount.NewController(fs, mounter, root)

	return &storage{
		enumerator: enumerator,
		controller: controller,
		teardown:   teardown.NewManager(enumerator, controller, fs, root),
	}, nil
}

func (s *storage) close() {
	if c, ok := s.enumerator.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn("failed to close enumerator", "error", err)
		}
	}
}

// newFrontend picks the display and the input sources for the mode
func newFrontend(cfg *config.Config, sess *session.Session) (display.Display, []input.Source, error) {
	var (
		disp    display.Display
		sources []input.Source
	)

	switch cfg.Mode {
	case "pi":
		gpio, err := input.OpenGPIO(cfg.GPIO.Pins, input.NewDebouncer(clockwork.NewRealClock(), cfg.GPIO.Debounce))
		if err != nil {
			return nil, nil, fmt.Errorf("open buttons: %w", err)
		}
		sources = append(sources, gpio)

		oled, err := display.OpenOLED(cfg.Display.I2CBus)
		if err != nil {
			log.Warn("display unavailable, running without it", "error", err)
			disp = display.NewNop()
		} else {
			disp = oled
		}
	case "simulator":
		term, err := simulator.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("open simulator: %w", err)
		}
		disp = term
		sources = append(sources, term)
	case "headless":
		disp = display.NewNop()
	default:
		return nil, nil, fmt.Errorf("unknown mode: %s", cfg.Mode)
	}

	if cfg.SocketPath != "" {
		sources = append(sources, control.NewServer(cfg.SocketPath, sess))
	}

	return disp, sources, nil
}
