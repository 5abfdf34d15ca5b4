/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/flames/storage"
)

type Config struct {
	bind           string
	dataDir        string
	historyLimit   int
	port           int
	prefix         string
	profile        bool
	s3Bucket       string
	s3Prefix       string
	sessionTimeout time.Duration
	stepDelay      time.Duration
	store          string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if !slices.Contains(storage.Kinds(), c.store) {
		return fmt.Errorf("invalid store (must be one of %s): %q", strings.Join(storage.Kinds(), ", "), c.store)
	}
	if c.store == storage.KindS3 && c.s3Bucket == "" {
		return errors.New("--s3-bucket is required when --store=s3")
	}
	if c.historyLimit < 1 {
		return fmt.Errorf("invalid history limit (must be at least 1): %d", c.historyLimit)
	}
	if c.stepDelay < 0 {
		return fmt.Errorf("invalid step delay (must not be negative): %s", c.stepDelay)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) storeOptions() storage.Options {
	return storage.Options{
		DataDir: c.dataDir,
		Bucket:  c.s3Bucket,
		Prefix:  c.s3Prefix,
	}
}

// bindEnv lets every flag in fs fall back to FLAMES_<FLAG> when it was not
// set on the command line.
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix("FLAMES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func normalizeFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flames",
		Short:         "The FLAMES name game, served as a small webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(normalizeFlags)

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FLAMES_BIND)")
	fs.StringVar(&cfg.dataDir, "data-dir", "data", "directory for the file and sqlite stores (env: FLAMES_DATA_DIR)")
	fs.IntVar(&cfg.historyLimit, "history-limit", storage.DefaultHistoryLimit, "history entries kept per browser (env: FLAMES_HISTORY_LIMIT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: FLAMES_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: FLAMES_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: FLAMES_PROFILE)")
	fs.StringVar(&cfg.s3Bucket, "s3-bucket", "", "bucket for the s3 store (env: FLAMES_S3_BUCKET)")
	fs.StringVar(&cfg.s3Prefix, "s3-prefix", "flames", "object key prefix for the s3 store (env: FLAMES_S3_PREFIX)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle play sessions are dropped (env: FLAMES_SESSION_TIMEOUT)")
	fs.DurationVar(&cfg.stepDelay, "step-delay", 560*time.Millisecond, "pause between elimination steps (env: FLAMES_STEP_DELAY)")
	fs.StringVar(&cfg.store, "store", storage.KindMemory, "where history is kept: "+strings.Join(storage.Kinds(), ", ")+" (env: FLAMES_STORE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: FLAMES_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: FLAMES_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: FLAMES_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: FLAMES_VERSION)")

	bindEnv(fs)

	cmd.AddCommand(newPlayCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("flames v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
