package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/tx433/internal/config"
	"github.com/taoyao-code/tx433/internal/logging"
	"github.com/taoyao-code/tx433/internal/metrics"
	"github.com/taoyao-code/tx433/internal/protocol/intertechno"
	"github.com/taoyao-code/tx433/internal/protocol/linecode"
	"github.com/taoyao-code/tx433/internal/switcher"
	"github.com/taoyao-code/tx433/internal/transport"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usageText = `usage: tx433 [flags] <group> <device> <on|off>
       tx433 [flags] <alias> <on|off>
       tx433 [flags] --raw <symbols>

flags:
`

type options struct {
	configPath string
	dryRun     bool
	raw        string
}

// run 解析参数并执行一次发送；sender 为 nil 时使用 UDP
func run(ctx context.Context, args []string, stdout, stderr io.Writer, sender transport.Sender) int {
	fs := pflag.NewFlagSet("tx433", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	var opts options
	fs.String("ip", "192.168.1.136", "gateway IP address")
	fs.Int("port", transport.DefaultPort, "gateway UDP port")
	fs.StringVarP(&opts.configPath, "config", "c", "", "config file (yaml/toml/json)")
	fs.BoolVarP(&opts.dryRun, "dry-run", "n", false, "print the frame without sending")
	fs.StringVar(&opts.raw, "raw", "", "send a raw symbol telegram instead of an address")
	fs.String("linecode", "pt2262", "line code for --raw (pt2262|ev1527)")
	fs.String("aliases", "", "switch alias file (yaml)")
	fs.String("log-level", "info", "log level (debug|info|warn|error)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "tx433: %v\n", err)
		fs.Usage()
		return exitUsage
	}

	req, err := parseRequest(fs.Args(), opts.raw != "")
	if err != nil {
		fmt.Fprintf(stderr, "tx433: %v\n", err)
		fs.Usage()
		return exitUsage
	}

	cfg, err := cfgpkg.Load(opts.configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "tx433: %v\n", err)
		return exitError
	}

	logger, err := logging.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "tx433: init logger: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	if err := execute(ctx, cfg, opts, req, stdout, sender, logger); err != nil {
		fmt.Fprintf(stderr, "tx433: %v\n", err)
		return exitError
	}
	return exitOK
}

// parseRequest 位置参数：group device command | alias command
func parseRequest(pos []string, raw bool) (switcher.Request, error) {
	if raw {
		if len(pos) != 0 {
			return switcher.Request{}, fmt.Errorf("--raw takes no positional arguments")
		}
		return switcher.Request{}, nil
	}

	var req switcher.Request
	switch len(pos) {
	case 3:
		req = switcher.Request{Group: pos[0], Device: pos[1], Command: pos[2]}
	case 2:
		req = switcher.Request{Alias: pos[0], Command: pos[1]}
	default:
		return switcher.Request{}, fmt.Errorf("expected <group> <device> <on|off> or <alias> <on|off>")
	}

	switch strings.ToLower(req.Command) {
	case "on", "off":
	default:
		return switcher.Request{}, fmt.Errorf("argument command: invalid choice %q (choose from on, off)", req.Command)
	}
	return req, nil
}

func execute(ctx context.Context, cfg *cfgpkg.Config, opts options, req switcher.Request, stdout io.Writer, sender transport.Sender, logger *zap.Logger) error {
	var aliases *intertechno.Aliases
	if cfg.Aliases.Path != "" {
		a, err := intertechno.LoadAliases(cfg.Aliases.Path)
		if err != nil {
			return err
		}
		aliases = a
		logger.Debug("aliases loaded", zap.String("path", cfg.Aliases.Path), zap.Int("count", a.Len()))
	}

	reg := metrics.NewRegistry()
	m := metrics.NewTxMetrics(reg)

	if sender == nil {
		sender = transport.NewUDPSender(cfg.Gateway.WriteTimeout)
	}
	svc, err := switcher.New(switcher.Config{
		Wire:     cfg.Wire,
		Endpoint: transport.Endpoint{Host: cfg.Gateway.IP, Port: cfg.Gateway.Port},
	}, sender, aliases, m, logger)
	if err != nil {
		return err
	}

	var res switcher.Result
	switch {
	case opts.raw != "":
		kind, kerr := linecode.ParseKind(cfg.LineCode)
		if kerr != nil {
			return kerr
		}
		if opts.dryRun {
			res, err = svc.PreviewRaw(opts.raw, kind)
		} else {
			res, err = svc.SendRaw(ctx, opts.raw, kind)
		}
	case opts.dryRun:
		res, err = svc.Preview(req)
	default:
		res, err = svc.Switch(ctx, req)
	}
	if err != nil {
		return err
	}

	if opts.dryRun {
		fmt.Fprintln(stdout, res.Frame)
	}

	if cfg.Metrics.Enable && cfg.Metrics.PushURL != "" {
		if perr := metrics.Push(ctx, cfg.Metrics.PushURL, cfg.Metrics.Job, reg); perr != nil {
			logger.Warn("push metrics failed", zap.String("url", cfg.Metrics.PushURL), zap.Error(perr))
		}
	}
	return nil
}
