// Package main implements rkcall, a diagnostic tool that performs one
// inter-resource call against a deployment and prints the normalized
// response. It exercises the same discovery, transport and session machinery
// a service would use, which makes it handy for verifying a deployment's
// wiring from the outside.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/c360/resourcekit/config"
	"github.com/c360/resourcekit/discovery"
	"github.com/c360/resourcekit/endpoint"
	"github.com/c360/resourcekit/natsclient"
	"github.com/c360/resourcekit/resource"
)

const version = "0.1.0"

type cliConfig struct {
	configPath string
	resource   string
	version    int
	action     string
	ident      string
	body       string
	language   string
	timeout    time.Duration
	verbose    bool
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\n%s\n", r, buf[:n])
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("rkcall failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cli := parseFlags()

	level := slog.LevelWarn
	if cli.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(cli.configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cli.timeout)
	defer cancel()

	deps := endpoint.Dependencies{Logger: logger}

	if cfg.NATS.URL != "" {
		client := natsclient.New(cfg.NATS.URL, logger,
			natsclient.WithName("rkcall"),
			natsclient.WithRequestTimeout(cfg.NATS.RequestTimeout))
		if err := client.Connect(ctx); err != nil {
			return err
		}
		defer client.Close()
		deps.NATS = client
	}

	deps.Discoverer, err = buildDiscoverer(cfg, deps.NATS, logger)
	if err != nil {
		return err
	}

	opts := []endpoint.Option{}
	if cli.language != "" {
		opts = append(opts, endpoint.WithLanguage(cli.language))
	}

	ep, err := endpoint.New(ctx, deps, cli.resource, cli.version, opts...)
	if err != nil {
		return err
	}

	if cfg.Session.CallerID != "" {
		sessions, err := endpoint.New(ctx, deps, "Session", 1)
		if err != nil {
			return err
		}
		source := endpoint.NewEndpointSessionSource(sessions, cfg.Session.CallerID, cfg.Session.CallerSecret)
		ep, err = endpoint.New(ctx, deps, cli.resource, cli.version,
			append(opts, endpoint.WithAutoSession(source))...)
		if err != nil {
			return err
		}
	}

	resp, err := invoke(ctx, ep, cli)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func buildDiscoverer(cfg *config.Config, nats *natsclient.Client, logger *slog.Logger) (discovery.Discoverer, error) {
	switch cfg.Discovery.Mode {
	case "", "static":
		return discovery.NewStatic(), nil
	case "convention":
		return discovery.NewByConvention(cfg.Discovery.BaseURI), nil
	case "kv":
		if nats == nil {
			return nil, fmt.Errorf("kv discovery needs a connected NATS client")
		}
		var opts []discovery.KVOption
		if cfg.Discovery.Bucket != "" {
			opts = append(opts, discovery.WithBucket(cfg.Discovery.Bucket))
		}
		return discovery.NewKV(nats, logger, opts...), nil
	default:
		return nil, fmt.Errorf("unknown discovery mode %q", cfg.Discovery.Mode)
	}
}

func invoke(ctx context.Context, ep *endpoint.Endpoint, cli *cliConfig) (*resource.Response, error) {
	var body resource.Payload
	if cli.body != "" {
		if err := json.Unmarshal([]byte(cli.body), &body); err != nil {
			return nil, fmt.Errorf("request body is not valid JSON: %w", err)
		}
	}

	switch resource.Action(cli.action) {
	case resource.ActionList:
		return ep.List(ctx, nil), nil
	case resource.ActionShow:
		return ep.Show(ctx, cli.ident), nil
	case resource.ActionCreate:
		return ep.Create(ctx, body), nil
	case resource.ActionUpdate:
		return ep.Update(ctx, cli.ident, body), nil
	case resource.ActionDelete:
		return ep.Delete(ctx, cli.ident), nil
	default:
		return nil, fmt.Errorf("unknown action %q (want list, show, create, update or delete)", cli.action)
	}
}

func printResponse(resp *resource.Response) error {
	out := map[string]any{"status": resp.Status}
	switch {
	case resp.IsError():
		out["errors"] = resp.Errors.Errors()
	case resp.Resources != nil:
		out["_data"] = resp.Resources
		out["_dataset_size"] = resp.DatasetSize
	default:
		out["resource"] = resp.Resource
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if resp.IsError() {
		return fmt.Errorf("call failed with status %d", resp.Status)
	}
	return nil
}

func parseFlags() *cliConfig {
	cli := &cliConfig{}
	flag.StringVar(&cli.configPath, "config", "resourcekit.yaml", "configuration file (JSON or YAML)")
	flag.StringVar(&cli.resource, "resource", "", "resource name, e.g. Purchase")
	flag.IntVar(&cli.version, "version", 1, "resource version")
	flag.StringVar(&cli.action, "action", "show", "action: list, show, create, update or delete")
	flag.StringVar(&cli.ident, "ident", "", "resource identifier for show, update and delete")
	flag.StringVar(&cli.body, "body", "", "JSON request body for create and update")
	flag.StringVar(&cli.language, "language", "", "locale sent with the call")
	flag.DurationVar(&cli.timeout, "timeout", 30*time.Second, "overall call timeout")
	flag.BoolVar(&cli.verbose, "verbose", false, "enable debug logging")
	showVersion := flag.Bool("version-info", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("rkcall %s\n", version)
		os.Exit(0)
	}
	if cli.resource == "" {
		fmt.Fprintln(os.Stderr, "rkcall: -resource is required")
		flag.Usage()
		os.Exit(2)
	}
	if cli.ident == "" && needsIdent(cli.action) {
		fmt.Fprintf(os.Stderr, "rkcall: -ident is required for %s\n", cli.action)
		os.Exit(2)
	}
	return cli
}

func needsIdent(action string) bool {
	switch resource.Action(strings.ToLower(action)) {
	case resource.ActionShow, resource.ActionUpdate, resource.ActionDelete:
		return true
	}
	return false
}
