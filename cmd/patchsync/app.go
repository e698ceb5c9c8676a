package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/patchsync/aws/secrets"
	psErrors "github.com/input-output-hk/patchsync/errors"
	"github.com/input-output-hk/patchsync/git"
	"github.com/input-output-hk/patchsync/patchsync"
)

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "patchsync",
		Usage:     "Exchange selective patches through an S3-compatible bucket",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			{
				Name:      "push",
				Usage:     "Build NAME.patch from the repository and upload it",
				ArgsUsage: "NAME [PATH...]",
				Action:    withOrchestrator(stderr, runPush(stdout)),
			},
			{
				Name:   "list",
				Usage:  "List patches in the bucket",
				Action: withOrchestrator(stderr, runList(stdout)),
			},
			{
				Name:      "pull",
				Usage:     "Download KEY and apply it",
				ArgsUsage: "KEY",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target",
						Usage: "Directory to download into and apply to (default: --repo)",
					},
				},
				Action: withOrchestrator(stderr, runPull(stdout)),
			},
			{
				Name:      "delete",
				Usage:     "Delete KEY from the bucket",
				ArgsUsage: "KEY",
				Action:    withOrchestrator(stderr, runDelete(stdout)),
			},
			{
				Name:   "changes",
				Usage:  "List changed paths in the repository",
				Flags:  changeFlags(),
				Action: withOrchestrator(stderr, runChanges(stdout)),
			},
		},
	}
}

func globalFlags() []cli.Flag {
	str := func(key, usage string) cli.Flag {
		return &cli.StringFlag{Name: flagName(key), Usage: usage, EnvVars: []string{envName(key)}}
	}
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Config file (default: $XDG_CONFIG_HOME/" + configFileName + ")",
			EnvVars: []string{envName("config")},
		},
		str(keyAccessKey, "Access key ID (falls back to the AWS default chain)"),
		str(keySecretKey, "Secret access key (falls back to the AWS default chain)"),
		str(keyRegion, "Store region"),
		str(keyBucket, "Bucket name"),
		str(keyService, "Signing service name"),
		str(keyRepo, "Repository working tree"),
		str(keyEndpoint, "Custom endpoint URL; enables path-style addressing"),
		str(keyProviderDomain, "Provider domain for virtual-hosted addressing"),
		&cli.DurationFlag{
			Name:    flagName(keyTimeout),
			Usage:   "Per-request timeout",
			EnvVars: []string{envName(keyTimeout)},
		},
		&cli.IntFlag{
			Name:    flagName(keyMaxConcurrent),
			Usage:   "Maximum concurrent workflows",
			EnvVars: []string{envName(keyMaxConcurrent)},
		},
		str(keyLogLevel, "Log level: debug, info, warn, error"),
		str(keySecret, "AWS Secrets Manager secret holding access_key, secret_key, region and bucket"),
	}
}

// commandFunc runs one workflow with resolved settings.
type commandFunc func(c *cli.Context, orch *patchsync.Orchestrator, cfg patchsync.Config) error

func withOrchestrator(stderr io.Writer, fn commandFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := loadSettings(c)
		if err != nil {
			return err
		}

		filters, err := changeFilters(c)
		if err != nil {
			return fmt.Errorf("%s: %w", psErrors.GetCode(err), err)
		}

		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: s.LogLevel}))
		cfg := s.Config
		if c.Command.Name != "changes" {
			if s.Secret != "" {
				client, err := secrets.NewClient(c.Context, secrets.WithRegion(cfg.Region), secrets.WithLogger(logger))
				if err != nil {
					return err
				}
				if cfg, err = applySecret(c.Context, cfg, client, s.Secret); err != nil {
					return fmt.Errorf("%s: %w", psErrors.GetCode(err), err)
				}
			}
			cfg = resolveCredentials(c.Context, cfg, logger)
		}
		logger.Debug("configuration loaded", "config", cfg, "endpoint", s.Endpoint)

		opts := []patchsync.Option{
			patchsync.WithLogger(logger),
			patchsync.WithMaxConcurrent(s.MaxConcurrent),
			patchsync.WithStoreOptions(s.storeOptions()...),
		}
		if len(filters) > 0 {
			opts = append(opts, patchsync.WithChangeLister(git.NewChangeLister(filters...)))
		}
		orch := patchsync.New(opts...)
		defer orch.Wait()

		if err := fn(c, orch, cfg); err != nil {
			return fmt.Errorf("%s: %w", psErrors.GetCode(err), err)
		}
		return nil
	}
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() < n {
		return psErrors.Newf(psErrors.CodeInvalidConfig, "usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}

func runPush(out io.Writer) commandFunc {
	return func(c *cli.Context, orch *patchsync.Orchestrator, cfg patchsync.Config) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		args := c.Args().Slice()

		res, err := orch.CreateAndUpload(c.Context, cfg, args[0], args[1:]).Wait(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "uploaded %s\n", res.Key)
		return nil
	}
}

func runList(out io.Writer) commandFunc {
	return func(c *cli.Context, orch *patchsync.Orchestrator, cfg patchsync.Config) error {
		res, err := orch.ListAvailable(c.Context, cfg).Wait(c.Context)
		if err != nil {
			return err
		}
		for _, k := range res.Keys {
			fmt.Fprintln(out, k)
		}
		return nil
	}
}

func runPull(out io.Writer) commandFunc {
	return func(c *cli.Context, orch *patchsync.Orchestrator, cfg patchsync.Config) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}

		res, err := orch.DownloadAndApply(c.Context, cfg, c.Args().First(), c.String("target")).Wait(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %s\n", res.PatchPath)
		return nil
	}
}

func runDelete(out io.Writer) commandFunc {
	return func(c *cli.Context, orch *patchsync.Orchestrator, cfg patchsync.Config) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}

		res, err := orch.Delete(c.Context, cfg, c.Args().First()).Wait(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", res.Key)
		return nil
	}
}

func runChanges(out io.Writer) commandFunc {
	return func(c *cli.Context, orch *patchsync.Orchestrator, cfg patchsync.Config) error {
		res, err := orch.ListChanges(c.Context, cfg).Wait(c.Context)
		if err != nil {
			return err
		}
		for _, p := range res.Paths {
			fmt.Fprintln(out, p)
		}
		return nil
	}
}

func changeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "ext", Usage: "Only paths with one of these extensions, e.g. .go"},
		&cli.StringSliceFlag{Name: "prefix", Usage: "Only paths under one of these prefixes"},
		&cli.StringSliceFlag{Name: "match", Usage: "Only paths matching one of these glob patterns"},
		&cli.StringSliceFlag{Name: "exclude", Usage: "Skip paths matching this glob pattern"},
		&cli.StringSliceFlag{Name: "status", Usage: "Only changes in one of these states: added, deleted, modified, unstaged"},
	}
}

var statusFilters = map[string]func() git.ChangeFilter{
	"added":    git.AddedFilter,
	"deleted":  git.DeletedFilter,
	"modified": git.ModifiedFilter,
	"unstaged": git.UnstagedFilter,
}

// changeFilters builds the filters selected on the changes command. Values of
// one flag are alternatives; every flag given must match.
func changeFilters(c *cli.Context) ([]git.ChangeFilter, error) {
	var filters []git.ChangeFilter
	if exts := c.StringSlice("ext"); len(exts) > 0 {
		filters = append(filters, git.ExtensionFilter(exts...))
	}
	if f := anyOf(c.StringSlice("prefix"), git.PathPrefixFilter); f != nil {
		filters = append(filters, f)
	}
	if f := anyOf(c.StringSlice("match"), git.PathFilter); f != nil {
		filters = append(filters, f)
	}
	for _, pattern := range c.StringSlice("exclude") {
		filters = append(filters, git.NotFilter(git.PathFilter(pattern)))
	}

	var states []git.ChangeFilter
	for _, name := range c.StringSlice("status") {
		mk, ok := statusFilters[strings.ToLower(name)]
		if !ok {
			return nil, psErrors.Newf(psErrors.CodeInvalidConfig, "unknown status %q", name)
		}
		states = append(states, mk())
	}
	if len(states) > 0 {
		filters = append(filters, git.OrFilter(states...))
	}
	return filters, nil
}

func anyOf(values []string, mk func(string) git.ChangeFilter) git.ChangeFilter {
	if len(values) == 0 {
		return nil
	}
	filters := make([]git.ChangeFilter, 0, len(values))
	for _, v := range values {
		filters = append(filters, mk(v))
	}
	return git.OrFilter(filters...)
}
