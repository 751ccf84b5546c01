package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TheJproject/weather-chatbot/config"
	"github.com/TheJproject/weather-chatbot/internal/agent"
	v1 "github.com/TheJproject/weather-chatbot/internal/controllers/http/v1"
	"github.com/TheJproject/weather-chatbot/internal/openmeteo"
	"github.com/TheJproject/weather-chatbot/pkg/httpserver"
	"github.com/TheJproject/weather-chatbot/pkg/observe"
)

// @title Weather Chatbot API
// @version 1.0.0
// @description A conversational weather and climate assistant. An LLM orchestrates geocoding, forecast, and historical lookups against the Open-Meteo APIs and composes natural-language answers.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Chat
// @tag.description Conversational weather assistant operations

var configFile string

func main() {
	// Secrets come from .env in development; missing file is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "weather-chatbot",
		Short: "Conversational weather and climate assistant",
		Long:  "An LLM-driven assistant that answers weather questions using the Open-Meteo geocoding, forecast, and archive APIs",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(askCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chat HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cnf, err := config.NewConfig(configFile)
			if err != nil {
				return err
			}

			l := newLogger(cnf)
			assistant := newAssistant(cnf, l)

			app := httpserver.InitFiberServer(cnf.AppName)
			v1.NewRouter(app, assistant, l)

			go func() {
				if err := app.Listen(":" + cnf.Port); err != nil {
					l.Fatal("cannot run the server", map[string]any{"err": err})
				}
			}()

			l.Info("application started successfully", map[string]any{"port": cnf.Port})

			sigCh := make(chan os.Signal, 2)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			l.Warning("stopping application services")
			signal.Stop(sigCh)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			_ = app.ShutdownWithContext(shutdownCtx)
			_ = l.Stop()

			return nil
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant one question and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cnf, err := config.NewConfig(configFile)
			if err != nil {
				return err
			}

			l := newLogger(cnf)
			assistant := newAssistant(cnf, l)

			answer, err := assistant.Answer(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to answer: %w", err)
			}

			fmt.Println(answer)
			return nil
		},
	}
}

func newLogger(cnf *config.Config) *observe.Logger {
	if cnf.SentryDSN != "" {
		hook := observe.NewSentryHook(cnf.AppEnv, cnf.AppName, cnf.SentryDSN, cnf.AppEnv != "production")
		return observe.NewZapLogger(cnf.AppName, os.Stdout, hook)
	}
	return observe.NewZapLogger(cnf.AppName, os.Stdout)
}

func newAssistant(cnf *config.Config, l *observe.Logger) *agent.Agent {
	timeout := time.Duration(cnf.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	weatherClient := openmeteo.NewClient(openmeteo.ClientConfig{
		GeocodingURL:      cnf.GeocodingURL,
		ForecastURL:       cnf.ForecastURL,
		ArchiveURL:        cnf.ArchiveURL,
		RequestsPerSecond: cnf.WeatherRPS,
		Burst:             cnf.WeatherBurst,
		MaxRetries:        cnf.WeatherMaxRetries,
	}, l, &http.Client{Timeout: timeout})

	return agent.New(agent.Config{
		APIKey:  cnf.OpenRouterAPIKey,
		Model:   cnf.OpenRouterModel,
		BaseURL: cnf.OpenRouterBaseURL,
	}, agent.Tools(weatherClient), l)
}
