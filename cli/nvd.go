package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/crlszmr/vuln-scanner-sub000/config"
	"github.com/crlszmr/vuln-scanner-sub000/internal/render"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/i18n"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/importer"
)

func nvd() {
	nvdCmd := &cobra.Command{
		Use:   "nvd",
		Short: "Manage CVE/CPE/CWE reference data",
		Long: `Examples:
  # Import CVE entries, following progress until done
  $ vulnconsole nvd import cve

  # Import the CPE dictionary
  $ vulnconsole nvd import cpe

  # Delete all stored CWE entries without a confirmation prompt
  $ vulnconsole nvd delete cwe --yes

  # List stored platforms
  $ vulnconsole nvd list cpe`}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Run a reference data import",
	}
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete all stored entries of a kind",
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reference data",
	}

	kinds := map[string]func(*config.Config) importer.Kind{
		"cve": importer.CVE,
		"cpe": importer.CPE,
		"cwe": importer.CWE,
	}

	for name, kindOf := range kinds {
		kindOf := kindOf

		importCmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: "import " + name + " entries",
			Args:  NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				runImport(kindOf)
			},
		})

		deleteCmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: "delete all " + name + " entries",
			Args:  NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				runDeleteAll(kindOf)
			},
		})
	}

	listCmd.AddCommand(&cobra.Command{
		Use:   "cpe",
		Short: "list stored platforms",
		Args:  NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runListPlatforms()
		},
	})

	deleteCmd.PersistentFlags().BoolVarP(&skipAsk, "yes", "y", false, "skip the confirmation prompt")

	nvdCmd.AddCommand(importCmd)
	nvdCmd.AddCommand(deleteCmd)
	nvdCmd.AddCommand(listCmd)

	rootCmd.AddCommand(nvdCmd)
}

// runImport drives one import attempt to a terminal state. An import
// left running by a previous console run is resumed instead of
// restarted.
func runImport(kindOf func(*config.Config) importer.Kind) {
	c, err := newConsole()
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer c.close()

	kind := kindOf(c.cfg)
	ctrl := importer.New(kind, c.client, c.store, render.Notify)

	ctx, cancel := context.WithCancel(config.Ctx)
	defer cancel()

	resumed, err := ctrl.Resume(ctx)
	if resumed {
		log.Printf(config.Yellow("Resuming an import already in progress"))
	}
	if err == nil && !resumed {
		err = ctrl.Start(ctx)
	}
	if err != nil {
		log.Printf("failed to attach to the %s import, error: %v", kind.Name, err)
		os.Exit(1)
	}

	// ^C stops the import; the server is told best-effort.
	var stopped atomic.Bool
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		ctrl.Stop()
		stopped.Store(true)
	}()

	final := render.NewWatcher(os.Stdout).Watch(ctrl, stopped.Load)

	if stopped.Load() {
		log.Printf(config.Yellow(i18n.T(kind.LabelKey("aborted_by_user"), nil)))
		return
	}
	if final.Status == importer.StatusError {
		os.Exit(1)
	}
}

// runDeleteAll is the plain request/response deletion flow: count,
// confirm, delete.
func runDeleteAll(kindOf func(*config.Config) importer.Kind) {
	c, err := newConsole()
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer c.close()

	kind := kindOf(c.cfg)
	ctx := config.Ctx

	if kind.CountPath != "" {
		count, err := c.client.Count(ctx, kind.CountPath)
		if err != nil {
			log.Printf("failed to count %s entries, error: %v", kind.Name, err)
			os.Exit(1)
		}
		if count == 0 {
			log.Printf(i18n.T(kind.LabelKey("nothing_to_delete"), nil))
			return
		}
		if !confirm(i18n.T(kind.LabelKey("delete_confirmation"),
			map[string]interface{}{"count": count})) {
			return
		}
	} else if !confirm("This removes every stored " + kind.Name + " entry. Continue?") {
		return
	}

	if err := c.client.DeleteAll(ctx, kind.DeletePath); err != nil {
		log.Printf(config.Red(i18n.T(kind.LabelKey("delete_error"), nil)))
		log.Printf("error: %v", err)
		os.Exit(1)
	}

	log.Printf(config.Green(i18n.T(kind.LabelKey("delete_success"), nil)))
}

func runListPlatforms() {
	c, err := newConsole()
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer c.close()

	platforms, err := c.client.ListPlatforms(config.Ctx)
	if err != nil {
		log.Printf("failed to list platforms, error: %v", err)
		os.Exit(1)
	}

	render.Platforms(os.Stdout, platforms)
}

func confirm(question string) bool {
	if skipAsk {
		return true
	}

	log.Printf("%s [y/N] ", question)

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
