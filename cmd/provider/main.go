package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"cloudformation-dynatrace-resource-providers/internal/application/lifecycle"
	"cloudformation-dynatrace-resource-providers/internal/config"
	"cloudformation-dynatrace-resource-providers/internal/domain/models"
	"cloudformation-dynatrace-resource-providers/internal/infrastructure/dynatrace"
)

var configPath string

func main() {
	klog.InitFlags(nil)

	root := &cobra.Command{
		Use:   "provider",
		Short: "Dynatrace synthetic-monitor resource provider",
		Long: "Drives Dynatrace synthetic-monitor lifecycles the way the CloudFormation " +
			"host does: each invocation performs one state-machine transition and " +
			"re-invocation is scheduled from the returned callback state.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newInvokeCommand())
	root.AddCommand(newListCommand())
	root.AddCommand(newConfigUsageCommand())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		klog.Errorf("provider failed: %v", err)
		os.Exit(1)
	}
}

func newLifecycle() (*lifecycle.MonitorLifecycle, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	gateway, err := dynatrace.NewClient(cfg.API)
	if err != nil {
		return nil, err
	}

	return lifecycle.NewMonitorLifecycle(gateway, cfg.Handlers)
}

func newInvokeCommand() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:       "invoke {create|update|delete|read}",
		Short:     "Run one lifecycle operation to completion",
		Long:      "Runs a lifecycle operation the way the host runtime would: on an in-progress outcome the handler is re-invoked with the returned callback state after the advisory delay.",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"create", "update", "delete", "read"},
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLifecycle()
			if err != nil {
				return err
			}

			desired, err := loadModel(modelPath)
			if err != nil {
				return err
			}

			event := runToCompletion(cmd.Context(), l, args[0], desired)
			return printEvent(event)
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "Path to the desired-state JSON document")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Enumerate all synthetic monitors of the environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLifecycle()
			if err != nil {
				return err
			}
			return printEvent(l.List(cmd.Context()))
		},
	}
}

func newConfigUsageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config-usage",
		Short: "Describe all configuration parameters",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetConfigUsage())
		},
	}
}

// runToCompletion plays the host runtime: persist the callback state, wait
// the advisory delay and re-invoke until the handler reports a terminal
// outcome or the context is cancelled
func runToCompletion(ctx context.Context, l *lifecycle.MonitorLifecycle, operation string, desired *models.SyntheticMonitor) models.ProgressEvent {
	req := lifecycle.Request{Desired: desired}

	for {
		var event models.ProgressEvent
		switch operation {
		case "create":
			event = l.Create(ctx, req)
		case "update":
			event = l.Update(ctx, req)
		case "delete":
			event = l.Delete(ctx, req)
		case "read":
			event = l.Read(ctx, req)
		}

		if event.Terminal() {
			return event
		}

		klog.Infof("%s in progress, re-invoking in %ds", operation, event.DelaySeconds)
		select {
		case <-ctx.Done():
			return models.Failure(models.FaultOther, "invocation cancelled")
		case <-time.After(time.Duration(event.DelaySeconds) * time.Second):
		}

		req = lifecycle.Request{Desired: desired, Callback: event.Callback}
		if event.Model != nil {
			req.Desired = event.Model
		}
	}
}

func loadModel(path string) (*models.SyntheticMonitor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var monitor models.SyntheticMonitor
	if err := json.Unmarshal(raw, &monitor); err != nil {
		return nil, fmt.Errorf("failed to decode model file: %w", err)
	}
	return &monitor, nil
}

func printEvent(event models.ProgressEvent) error {
	out, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if event.Status == models.StatusFailed {
		return fmt.Errorf("%s: %s", event.Fault, event.Message)
	}
	return nil
}
