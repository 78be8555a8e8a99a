// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser/cdp"
	"github.com/xkilldash9x/ficwright/internal/browser/webdriver"
	"github.com/xkilldash9x/ficwright/internal/config"
	"github.com/xkilldash9x/ficwright/internal/observability"
	"github.com/xkilldash9x/ficwright/internal/orchestrator"
	"github.com/xkilldash9x/ficwright/internal/prompt"
	"github.com/xkilldash9x/ficwright/internal/supervisor"
)

const envPrefix = "FICWRIGHT"

// runnerFactory builds the orchestrator for one browser command.
type runnerFactory func(cfg *config.Config, logger *zap.Logger) (*orchestrator.Runner, error)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v         *viper.Viper
	cfgFile   string
	cfg       *config.Config
	prompter  prompt.Prompter
	newRunner runnerFactory
}

// NewRootCommand creates a fresh command tree with production dependencies.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{
		v:         viper.New(),
		prompter:  prompt.Terminal{},
		newRunner: defaultRunner,
	})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ficwright",
		Short:         "Ficwright fills in the archive's post new work form from a work document.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
	}
	root.SetVersionTemplate(`{{printf "ficwright version %s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./ficwright.yaml)")
	flags.String("server-log", "", "file receiving the automation server's output")
	flags.String("cookies", "", "cookie file (default is ~/.ao3.cookie)")
	flags.String("backend", "", "browser protocol: webdriver or cdp")

	// Flags only win over config when explicitly set.
	for key, flag := range map[string]string{
		"server.log_file":     "server-log",
		"session.cookie_file": "cookies",
		"browser.backend":     "backend",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %q: %v", flag, err))
		}
	}

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newLookCmd(a),
		newPostNewCmd(a),
		newDemoCmd(a),
		newTemplateCmd(),
		newDebugTemplateCmd(),
		newVersionCmd(),
	)
	return root
}

// initialize reads the config file and environment, then sets up logging.
func (a *app) initialize() error {
	v := a.v
	config.SetDefaults(v)
	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("ficwright")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(config.EnvKeyReplacer())
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "ficwright"})
		return err
	}
	a.cfg = cfg
	observability.InitializeLogger(cfg.Logger)
	observability.GetLogger().Debug("Configuration loaded.",
		zap.String("backend", cfg.Browser.Backend),
		zap.String("server_address", cfg.Server.Address),
		zap.String("config_file", v.ConfigFileUsed()),
	)
	return nil
}

// run executes a browser command under the orchestrator.
func (a *app) run(ctx context.Context, c orchestrator.Command) error {
	logger := observability.GetLogger().With(zap.String("command", c.Name()))
	runner, err := a.newRunner(a.cfg, logger)
	if err != nil {
		return err
	}
	return runner.Run(ctx, c)
}

func defaultRunner(cfg *config.Config, logger *zap.Logger) (*orchestrator.Runner, error) {
	launcher := orchestrator.ProcessLauncher{
		Options: supervisor.OptionsFromConfig(cfg),
		Logger:  logger,
	}
	return orchestrator.New(launcher, newOpener(cfg, logger), logger)
}

func newOpener(cfg *config.Config, logger *zap.Logger) orchestrator.SessionOpener {
	if cfg.Browser.Backend == config.BackendCDP {
		return cdp.Opener{Config: cfg, Logger: logger}
	}
	return webdriver.Opener{Config: cfg, Logger: logger}
}

// Execute runs the root command. Errors are logged and printed; the caller
// chooses the exit code.
func Execute(ctx context.Context) error {
	return execute(ctx, NewRootCommand(), os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, stderr io.Writer) error {
	err := root.ExecuteContext(ctx)
	if err != nil {
		observability.GetLogger().Error("Command execution failed.", zap.Error(err))
		fmt.Fprintln(stderr, "Error:", err)
	}
	observability.Sync()
	return err
}
