// Package commands implements the CLI commands for gscript.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.trai.ch/gscript/internal/adapters/config"
	"go.trai.ch/gscript/internal/app"
	"go.trai.ch/gscript/internal/build"
	"go.trai.ch/gscript/internal/core/domain"
)

// CLI represents the command line interface for gscript.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Configure(v *viper.Viper) error
	Run(ctx context.Context, script string, opts app.RunOptions) error
	Check(ctx context.Context, script string, opts app.BuildOptions) (domain.Diagnostics, error)
	Compile(ctx context.Context, script string, opts app.BuildOptions) (*domain.CompileResult, error)
	Invoke(ctx context.Context, script, member string, opts app.RunOptions) (any, error)
	Members(ctx context.Context, script string, opts app.BuildOptions) ([]app.Member, error)
	Watch(ctx context.Context, script string, opts app.WatchOptions) error
	CacheList(ctx context.Context) ([]*domain.Artifact, error)
	CacheEvict(ctx context.Context, prefixes []string) ([]domain.Fingerprint, error)
	CacheClean(ctx context.Context) error
}

// overlayFlags maps persistent flags to configuration keys.
var overlayFlags = map[string]string{
	"cache-dir":       config.KeyCacheDir,
	"no-cache":        config.KeyCacheDisabled,
	"default-backend": config.KeyBackend,
	"go-command":      config.KeyExternalCommand,
	"compile-timeout": config.KeyExternalTimeout,
	"packages-root":   config.KeyPackagesRoot,
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "gscript",
		Short:         "Run Go source files as scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	pf := rootCmd.PersistentFlags()
	pf.String("cache-dir", "", "Directory of the compilation cache")
	pf.Bool("no-cache", false, "Disable the compilation cache")
	pf.String("default-backend", "", "Backend used when a script names none")
	pf.String("go-command", "", "Compiler executable of the external backend")
	pf.Duration("compile-timeout", 0, "Time limit for one external compilation")
	pf.String("packages-root", "", "Root directory of the local package store")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	rootCmd.PersistentPreRunE = c.configure

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newCompileCmd())
	rootCmd.AddCommand(c.newInvokeCmd())
	rootCmd.AddCommand(c.newMembersCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// configure binds the persistent flags to their configuration keys. Only flags given on
// the command line override the loaded configuration.
func (c *CLI) configure(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	for name, key := range overlayFlags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return c.app.Configure(v)
}
