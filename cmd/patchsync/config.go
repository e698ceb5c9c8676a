package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/patchsync/aws/s3"
	"github.com/input-output-hk/patchsync/aws/s3/s3types"
	"github.com/input-output-hk/patchsync/aws/secrets"
	psErrors "github.com/input-output-hk/patchsync/errors"
	"github.com/input-output-hk/patchsync/patchsync"
)

const (
	envPrefix      = "PATCHSYNC"
	configFileName = "patchsync/config.yaml"
)

// Setting keys shared by flags, environment variables and the config file.
// The flag name is the key with underscores replaced by dashes.
const (
	keyAccessKey      = "access_key"
	keySecretKey      = "secret_key"
	keyRegion         = "region"
	keyBucket         = "bucket"
	keyService        = "service"
	keyRepo           = "repo"
	keyEndpoint       = "endpoint"
	keyProviderDomain = "provider_domain"
	keyTimeout        = "timeout"
	keyMaxConcurrent  = "max_concurrent"
	keyLogLevel       = "log_level"
	keySecret         = "credentials_secret"
)

var settingKeys = []string{
	keyAccessKey, keySecretKey, keyRegion, keyBucket, keyService, keyRepo,
	keyEndpoint, keyProviderDomain, keyTimeout, keyMaxConcurrent, keyLogLevel,
	keySecret,
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}

// settings is everything a command needs, resolved once per invocation.
type settings struct {
	Config        patchsync.Config
	Endpoint      string
	Domain        string
	Timeout       time.Duration
	MaxConcurrent int
	LogLevel      slog.Level
	Secret        string
}

// storeOptions returns the object store options selected by the settings.
func (s settings) storeOptions() []s3types.Option {
	var opts []s3types.Option
	if s.Endpoint != "" {
		opts = append(opts, s3.WithEndpoint(s.Endpoint))
	}
	if s.Domain != "" {
		opts = append(opts, s3.WithProviderDomain(s.Domain))
	}
	if s.Timeout > 0 {
		opts = append(opts, s3.WithTimeout(s.Timeout))
	}
	return opts
}

// loadSettings merges, from highest precedence: flags, PATCHSYNC_* environment
// variables, the config file, and defaults. The config file is --config or
// $XDG_CONFIG_HOME/patchsync/config.yaml when present.
func loadSettings(c *cli.Context) (settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyService, s3types.DefaultService)
	v.SetDefault(keyMaxConcurrent, patchsync.DefaultMaxConcurrent)
	v.SetDefault(keyLogLevel, "info")

	path := c.String("config")
	if path == "" {
		if found, err := xdg.SearchConfigFile(configFileName); err == nil {
			path = found
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return settings{}, psErrors.Wrapf(err, psErrors.CodeInvalidConfig, "read config %s", path)
		}
	}

	for _, key := range settingKeys {
		name := flagName(key)
		if !c.IsSet(name) {
			continue
		}
		switch key {
		case keyTimeout:
			v.Set(key, c.Duration(name))
		case keyMaxConcurrent:
			v.Set(key, c.Int(name))
		default:
			v.Set(key, c.String(name))
		}
	}

	s := settings{
		Config: patchsync.Config{
			AccessKey: v.GetString(keyAccessKey),
			SecretKey: v.GetString(keySecretKey),
			Region:    v.GetString(keyRegion),
			Bucket:    v.GetString(keyBucket),
			Service:   v.GetString(keyService),
			RepoPath:  v.GetString(keyRepo),
		},
		Endpoint:      v.GetString(keyEndpoint),
		Domain:        v.GetString(keyProviderDomain),
		Timeout:       v.GetDuration(keyTimeout),
		MaxConcurrent: v.GetInt(keyMaxConcurrent),
		Secret:        v.GetString(keySecret),
	}

	if s.Config.RepoPath != "" {
		abs, err := filepath.Abs(s.Config.RepoPath)
		if err != nil {
			return settings{}, psErrors.Wrapf(err, psErrors.CodeInvalidConfig, "repo %s", s.Config.RepoPath)
		}
		s.Config.RepoPath = abs
	}

	if err := s.LogLevel.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		return settings{}, psErrors.Wrap(err, psErrors.CodeInvalidConfig, "log level")
	}

	return s, nil
}

// secretReader reads store credentials from a secret store.
type secretReader interface {
	GetStoreCredentials(ctx context.Context, secretName string) (secrets.StoreCredentials, error)
}

// applySecret fills empty keys, region and bucket from the named secret.
// Values already configured take precedence.
func applySecret(ctx context.Context, cfg patchsync.Config, r secretReader, name string) (patchsync.Config, error) {
	creds, err := r.GetStoreCredentials(ctx, name)
	if err != nil {
		return cfg, err
	}
	if cfg.AccessKey == "" && cfg.SecretKey == "" {
		cfg.AccessKey = creds.AccessKey
		cfg.SecretKey = creds.SecretKey
	}
	if cfg.Region == "" {
		cfg.Region = creds.Region
	}
	if cfg.Bucket == "" {
		cfg.Bucket = creds.Bucket
	}
	return cfg, nil
}

// resolveCredentials fills missing keys and region from the AWS default
// chain (environment, shared config, SSO, instance metadata). Failures leave
// the config unchanged so validation reports what is missing.
func resolveCredentials(ctx context.Context, cfg patchsync.Config, logger *slog.Logger) patchsync.Config {
	if cfg.AccessKey != "" && cfg.SecretKey != "" && cfg.Region != "" {
		return cfg
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		logger.Debug("aws default config unavailable", "error", err)
		return cfg
	}

	if cfg.Region == "" {
		cfg.Region = awsCfg.Region
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		creds, err := awsCfg.Credentials.Retrieve(ctx)
		if err != nil {
			logger.Debug("aws default credentials unavailable", "error", err)
			return cfg
		}
		cfg.AccessKey = creds.AccessKeyID
		cfg.SecretKey = creds.SecretAccessKey
		logger.Debug("using aws default credentials", "source", creds.Source)
	}
	return cfg
}
