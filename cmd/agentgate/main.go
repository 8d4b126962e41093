package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zen-systems/agentgate/pkg/chat"
	"github.com/zen-systems/agentgate/pkg/config"
	"github.com/zen-systems/agentgate/pkg/integration"
	"github.com/zen-systems/agentgate/pkg/intent"
	"github.com/zen-systems/agentgate/pkg/provider"
	"github.com/zen-systems/agentgate/pkg/scheduler"
	"github.com/zen-systems/agentgate/pkg/server"
	"github.com/zen-systems/agentgate/pkg/store"
)

var (
	chatConfigFile string
	modelFlag      string
	aliases        *config.ModelAliases
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "agentgate",
		Short: "Conversational agent gateway with tool intent detection and provider fallback",
		Long: `Agentgate serves chatbot conversations: each inbound message is
	classified for tool intent, integration credentials are resolved
	lazily, and the completion is dispatched to LLM providers with
	ordered fallback.`,
	}

	rootCmd.PersistentFlags().StringVar(&chatConfigFile, "config", "", "path to chat config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(decideCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addr string
	var noScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			st, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}

			providers, err := createProviders(cfg)
			if err != nil {
				return err
			}

			ttl := time.Duration(cfg.ChatConfig.CacheTTLMinutes) * time.Minute
			engine := intent.NewEngine(intent.NewCache(ttl))
			resolver := integration.NewResolver(st)
			manager := provider.NewManager(providers)

			srv := server.New(st, st, engine, resolver, manager, cfg.ChatConfig,
				server.WithAliases(aliases),
				server.WithToolStore(st),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noScheduler {
				sched := scheduler.New(st, scheduler.LogNotifier)
				if err := sched.Start(ctx); err != nil {
					return fmt.Errorf("failed to start scheduler: %w", err)
				}
				defer sched.Stop()
			}

			httpSrv := &http.Server{Addr: addr, Handler: srv.Router()}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(shutdownCtx)
			}()

			log.Printf("agentgate listening on %s", addr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "disable the reminder scheduler")

	return cmd
}

func askCmd() *cobra.Command {
	var streamFlag bool

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send a message directly to a model with fallback",
		Long: `Dispatches a single message through the provider manager. The
	fallback chain for the chosen model is attempted in order; the reply
	reports which model actually answered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			providers, err := createProviders(cfg)
			if err != nil {
				return err
			}
			manager := provider.NewManager(providers)

			model := modelFlag
			if model == "" {
				model = cfg.ChatConfig.DefaultModel
			}
			if aliases != nil {
				model, err = aliases.CheckModel(model)
				if err != nil {
					return fmt.Errorf("invalid model: %w", err)
				}
			}

			req := chat.Request{
				Model: model,
				Messages: []chat.Message{
					{Role: chat.RoleUser, Content: message},
				},
				Temperature: cfg.ChatConfig.Temperature,
				MaxTokens:   cfg.ChatConfig.MaxTokens,
			}
			chain := cfg.ChatConfig.FallbackChain(model)

			if streamFlag {
				result, _, err := manager.ExecuteStreamWithFallback(context.Background(), req, chain)
				if err != nil {
					return err
				}
				defer result.Stream.Close()

				fmt.Fprintf(os.Stderr, "Answering with %s/%s\n", result.ProviderUsed, result.ModelUsed)
				content, err := provider.Collect(result.Stream)
				if err != nil {
					return err
				}
				fmt.Println(content)
				return nil
			}

			result, _, err := manager.ExecuteWithFallback(context.Background(), req, chain)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Answering with %s/%s\n", result.ProviderUsed, result.ModelUsed)
			fmt.Println(result.Content)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "override model")
	cmd.Flags().BoolVar(&streamFlag, "stream", false, "stream the reply")

	return cmd
}

func decideCmd() *cobra.Command {
	var planFlag string
	var paymentFlag bool
	var toolsFlag bool

	cmd := &cobra.Command{
		Use:   "decide [message]",
		Short: "Classify a message for tool intent",
		Long: `Runs the decision engine on a message and prints the resulting
	classification as JSON. Useful for tuning chatbot plans and
	integrations without dispatching a completion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := intent.NewEngine(intent.NewCache(intent.DefaultCacheTTL))
			decision := engine.Decide(args[0], intent.ToolContext{
				ChatbotID:             "cli",
				Plan:                  intent.Plan(planFlag),
				HasPaymentIntegration: paymentFlag,
				ModelSupportsTools:    toolsFlag,
			})

			data, err := json.MarshalIndent(decision, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&planFlag, "plan", string(intent.PlanPro), "subscription plan (FREE, STARTER, PRO, ENTERPRISE)")
	cmd.Flags().BoolVar(&paymentFlag, "payment", false, "chatbot has an active payment integration")
	cmd.Flags().BoolVar(&toolsFlag, "tools", true, "model supports tool invocation")

	return cmd
}

func modelsCmd() *cobra.Command {
	var resolveFlag bool

	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"providers"},
		Short:   "List available providers, models, and aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if resolveFlag {
				return showAliases()
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")

			providers := aliases.ListProviders()
			if len(providers) == 0 {
				providers = []string{"anthropic", "google", "openai", "mock"}
			}

			for _, p := range providers {
				models := formatList(aliases.GetProviderModels(p))
				status := "no key"
				if cfg.HasProvider(p) || p == "mock" {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p, models, status)
			}

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")

	return cmd
}

func showAliases() error {
	if aliases == nil {
		fmt.Println("No model aliases configured.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL\tPROVIDER")

	aliasMap := aliases.ListAliases()
	var aliasNames []string
	for name := range aliasMap {
		aliasNames = append(aliasNames, name)
	}
	sort.Strings(aliasNames)

	for _, alias := range aliasNames {
		model := aliasMap[alias]
		p := aliases.GetProviderForModel(model)
		fmt.Fprintf(w, "%s\t%s\t%s\n", alias, model, p)
	}

	return w.Flush()
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	result := items[0]
	for i := 1; i < len(items); i++ {
		result += ", " + items[i]
	}
	return result
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if chatConfigFile != "" {
		cfg, err = config.LoadWithChatFile(chatConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	aliases, err = config.LoadAliasesWithFallback("configs/models.yaml")
	if err != nil || len(aliases.Aliases) == 0 {
		aliases = config.DefaultAliases()
	}

	return cfg, nil
}

func createProviders(cfg *config.Config) ([]provider.Provider, error) {
	var providers []provider.Provider

	if cfg.AnthropicAPIKey != "" {
		p, err := provider.NewAnthropicProvider(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.OpenAIAPIKey != "" {
		p, err := provider.NewOpenAIProvider(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.GoogleAPIKey != "" {
		p, err := provider.NewGoogleProvider(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google provider: %w", err)
		}
		providers = append(providers, p)
	}

	providers = append(providers, provider.NewMockProvider("mock", "mock-1"))

	return providers, nil
}
