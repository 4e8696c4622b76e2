package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mirelo/flowcheck"
	"github.com/mirelo/flowcheck/internal/loader"
	"github.com/mirelo/flowcheck/internal/logging"
	"github.com/mirelo/flowcheck/pkg/adapters/memory"
	redisadapter "github.com/mirelo/flowcheck/pkg/adapters/redis"
	"github.com/mirelo/flowcheck/pkg/domain"
	"github.com/mirelo/flowcheck/pkg/ports"
)

var validateCmd = &cobra.Command{
	Use:   "validate <flow-file>",
	Short: "Check a flow's parameter wiring against its screen library",
	Long: `Loads a flow definition and a directory of screen definitions, then verifies
that every required parameter of every screen instance resolves and is
compatible with the screen's declared schema.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args[0]); err != nil {
			var pre *domain.PreconditionError
			if errors.As(err, &pre) {
				fmt.Printf("Precondition failed (412)\n  field:    %s\n  expected: %s\n  actual:   %s\n", pre.Field, pre.Expected, pre.Actual)
				os.Exit(1)
			}
			var missing *domain.SubresourceMissingError
			if errors.As(err, &missing) {
				fmt.Printf("Missing %s (404): %q referenced by %s\n", missing.Kind, missing.Key, missing.Field)
				os.Exit(1)
			}
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	validateCmd.Flags().String("screens", "screens", "Directory containing screen definitions")
	validateCmd.Flags().String("redis", "", "Resolve screens from this Redis address instead of the screens directory")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, flowPath string) error {
	ctx := context.Background()

	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	flow, err := loader.LoadFlow(flowPath)
	if err != nil {
		return err
	}

	store, err := buildStore(ctx, cmd)
	if err != nil {
		return err
	}

	eng := flowcheck.New(
		flowcheck.WithScreenStore(store),
		flowcheck.WithLogger(logger),
	)

	unchanged, err := eng.CheckFlowScreens(ctx, flow)
	if err != nil {
		return err
	}

	fmt.Printf("Flow %q is valid. ✅\n", flow.Slug)
	for _, screen := range unchanged {
		fmt.Printf("  requires screen %s (uid %s) unchanged at commit time\n", screen.Slug, screen.UID)
	}
	return nil
}

// buildStore resolves screens either from Redis or from a local directory
// loaded into an in-memory store.
func buildStore(ctx context.Context, cmd *cobra.Command) (ports.ScreenStore, error) {
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		client := backend.NewClient(&backend.Options{Addr: addr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
		}
		return redisadapter.NewFromClient(client), nil
	}

	dir, _ := cmd.Flags().GetString("screens")
	screens, err := loader.LoadScreens(dir)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore()
	for _, screen := range screens {
		if err := store.PutScreen(ctx, screen); err != nil {
			return nil, err
		}
	}
	return store, nil
}
