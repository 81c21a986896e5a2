package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rollcall/internal/extract"
	"rollcall/internal/llm"
	"rollcall/internal/roster"
)

// modelsCmd lists the model selectors for ai mode
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List model selectors for ai mode (default marked with *)",
	RunE:  listModels,
}

// statusCmd reports backend and roster state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local backend, cloud credential and roster status",
	RunE:  showStatus,
}

func listModels(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetLocalTimeout())
	defer cancel()

	ex, err := extract.NewFromConfig(cfg, nil)
	if err != nil {
		return err
	}
	list := ex.Models(ctx)

	out := cmd.OutOrStdout()
	for i, m := range list.Names {
		marker := " "
		if i == list.Default {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, m)
	}
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	var (
		localLine string
		r         roster.Roster
	)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		localLine = checkLocal(ctx)
		return nil
	})
	g.Go(func() error {
		r = roster.Open(cfg.Roster.Path).Current()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Local backend:")
	fmt.Fprintf(out, "  %s\n", localLine)

	cloud := cfg.CloudResolved()
	credential := "missing"
	if cfg.HasCloudCredential() {
		credential = "configured"
	}
	fmt.Fprintln(out, "Cloud backend:")
	fmt.Fprintf(out, "  provider=%s model=%s credential=%s\n", cloud.Provider, cloud.Model, credential)

	primary, secondary, total := r.Counts()
	fmt.Fprintln(out, "Roster:")
	fmt.Fprintf(out, "  %s (%d primary, %d secondary, %d total)\n", cfg.Roster.Path, primary, secondary, total)
	return nil
}

func checkLocal(ctx context.Context) string {
	if !cfg.Local.Enabled {
		return "disabled"
	}
	client := llm.NewOllamaClient(cfg.Local.Endpoint, cfg.GetLocalTimeout())
	start := time.Now()
	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Sprintf("%s unreachable: %v", client.Endpoint(), err)
	}
	return fmt.Sprintf("%s ok (%d models, %v)", client.Endpoint(), len(models), time.Since(start).Round(time.Millisecond))
}
