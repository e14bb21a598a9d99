package cmd

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"github.com/trypromptly/promptly-cli/internal/analytics"
	"github.com/trypromptly/promptly-cli/internal/api"
	"github.com/trypromptly/promptly-cli/internal/app"
	"github.com/trypromptly/promptly-cli/internal/config"
	"github.com/trypromptly/promptly-cli/internal/logger"
	"github.com/trypromptly/promptly-cli/internal/profile"
	"github.com/trypromptly/promptly-cli/internal/router"
)

var (
	debugMode             bool
	quietMode             bool
	logFile               string
	baseURL               string
	startRoute            string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "promptly",
	Short: "Terminal console for Promptly",
	Long: `Promptly is a terminal console for the Promptly platform.
Browse app templates, create apps from them and jump to the pages of the
web console. Run "promptly login" first to store your session.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to warnings only")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default ~/.promptly/logs/promptly.log)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "Promptly server URL (overrides config and PROMPTLY_URL)")
	rootCmd.Flags().StringVar(&startRoute, "route", router.PathApps, "Initial route, e.g. /apps/templates/chatbot")
}

func initConfig() {
	path := logFile
	if path == "" {
		p, err := logger.DefaultLogPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			return
		}
		path = p
	}
	if err := logger.Init(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	defer logger.Close()
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("promptly %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("promptly %s\n", version)
}

// loadConfig loads the user's config. The --url flag applies to this run
// only and is not written back by Save.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if baseURL != "" {
		cfg.OverrideBaseURL(baseURL)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newReporter builds the page-view reporter, persisting a generated client
// id so the installation keeps one identity across runs
func newReporter(cfg *config.Config) *analytics.Reporter {
	siteID, secret, clientID := cfg.GetAnalytics()
	reporter := analytics.New(analytics.Options{
		MeasurementID: siteID,
		APISecret:     secret,
		ClientID:      clientID,
		BaseURL:       cfg.GetBaseURL(),
	})
	if clientID == "" && reporter.Enabled() {
		cfg.SetAnalyticsClientID(reporter.ClientID())
		if err := cfg.Save(); err != nil {
			logger.WithComponent("cmd").Warn("failed to persist analytics client id", "error", err)
		}
	}
	return reporter
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	nav := router.NewNavigator(startRoute)
	client, err := api.New(api.OptionsFromConfig(cfg, nav))
	if err != nil {
		return err
	}

	m := app.New(app.Options{
		Config:    cfg,
		Backend:   client,
		Navigator: nav,
		Profile:   profile.NewStore(),
		Analytics: newReporter(cfg),
		Version:   version,
	})
	defer m.Close()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
