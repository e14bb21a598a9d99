package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/trypromptly/promptly-cli/internal/api"
	"github.com/trypromptly/promptly-cli/internal/config"
	perrors "github.com/trypromptly/promptly-cli/internal/errors"
	"github.com/trypromptly/promptly-cli/internal/gallery"
	"github.com/trypromptly/promptly-cli/internal/notification"
	"github.com/trypromptly/promptly-cli/internal/router"
	"github.com/trypromptly/promptly-cli/internal/ui"
	"gopkg.in/yaml.v3"
)

var (
	outputFormat string
	appName      string
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"template", "t"},
	Short:   "Browse app templates and create apps from them",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List app templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Print a template with its app definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

var templatesCreateCmd = &cobra.Command{
	Use:   "create <slug>",
	Short: "Create an app from a template",
	Long: `Creates an app from the template and prints its route and web URL.
The app is named after the template unless --name is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplatesCreate,
}

func init() {
	templatesListCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json or yaml")
	templatesCreateCmd.Flags().StringVar(&appName, "name", "", "Name of the new app")
	templatesCmd.AddCommand(templatesListCmd, templatesShowCmd, templatesCreateCmd)
	rootCmd.AddCommand(templatesCmd)
}

// templateRow is the list output shape
type templateRow struct {
	Slug        string `json:"slug" yaml:"slug"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// headlessClient builds an API client whose login redirect prints a hint
func headlessClient(out io.Writer, path string) (*api.Client, *config.Config, *headlessNavigator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	nav := newHeadlessNavigator(out, path)
	client, err := api.New(api.OptionsFromConfig(cfg, nav))
	if err != nil {
		return nil, nil, nil, err
	}
	return client, cfg, nav, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	client, _, _, err := headlessClient(cmd.ErrOrStderr(), router.PathApps)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	templates, err := gallery.New(client).Load(ctx)
	if err != nil {
		return fmt.Errorf("could not list templates: %s", perrors.UserMessage(err))
	}
	return writeTemplates(cmd.OutOrStdout(), templates, outputFormat)
}

func writeTemplates(w io.Writer, templates []api.Template, format string) error {
	rows := make([]templateRow, 0, len(templates))
	for _, t := range templates {
		rows = append(rows, templateRow{Slug: t.Slug, Name: t.Name, Description: t.Summary()})
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rows)
	case "table", "":
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("SLUG", "NAME", "DESCRIPTION")
		for _, r := range rows {
			t.Row(r.Slug, r.Name, r.Description)
		}
		_, err := fmt.Fprintln(w, t.String())
		return err
	default:
		return perrors.E(perrors.Op("cmd.templates.list"), perrors.KindInvalid,
			fmt.Sprintf("unknown output format %q (want table, json or yaml)", format))
	}
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	slug := args[0]
	client, _, _, err := headlessClient(cmd.ErrOrStderr(), router.TemplatePath(slug))
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	tmpl, err := gallery.New(client).Detail(ctx, slug)
	if err != nil {
		return fmt.Errorf("could not load template %q: %s", slug, perrors.UserMessage(err))
	}
	data, err := json.Marshal(tmpl)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isTerminal(out) {
		_, err = fmt.Fprintln(out, ui.HighlightJSON(data))
		return err
	}
	var pretty strings.Builder
	enc := json.NewEncoder(&pretty)
	enc.SetIndent("", "  ")
	if err := enc.Encode(json.RawMessage(data)); err != nil {
		return err
	}
	_, err = io.WriteString(out, pretty.String())
	return err
}

func runTemplatesCreate(cmd *cobra.Command, args []string) error {
	slug := args[0]
	client, cfg, _, err := headlessClient(cmd.ErrOrStderr(), router.TemplatePath(slug))
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	g := gallery.New(client)
	if _, err := g.Open(ctx, slug); err != nil {
		return fmt.Errorf("could not load template %q: %s", slug, perrors.UserMessage(err))
	}
	name := appName
	if strings.TrimSpace(name) == "" {
		name = g.AppName()
	}
	location, err := g.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("could not create app: %s", perrors.UserMessage(err))
	}

	webURL := cfg.GetBaseURL() + location
	if cfg.GetNotificationsEnabled() {
		_ = notification.AppCreated(name, webURL)
	}
	fmt.Fprintln(cmd.OutOrStdout(), location)
	fmt.Fprintln(cmd.ErrOrStderr(), "Open in the editor: "+webURL)
	return nil
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
