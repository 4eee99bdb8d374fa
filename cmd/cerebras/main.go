// Command cerebras is a small terminal client for the Cerebras Inference
// API: chat, raw completions and model inspection.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/nikothomas/cerebras-go/cerebras"
	"github.com/nikothomas/cerebras-go/config"
	"github.com/nikothomas/cerebras-go/httpx"
	"github.com/nikothomas/cerebras-go/version"
)

var (
	flagConfig  string
	flagModel   string
	flagSystem  string
	flagMaxTok  int
	flagNoStrm  bool
	flagVerbose bool
	flagOutput  string
)

func main() {
	root := &cobra.Command{
		Use:           "cerebras",
		Short:         "Terminal client for the Cerebras Inference API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to settings file (default: environment only)")
	root.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "model id (overrides configured model)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log transport details to stderr")

	root.AddCommand(newChatCmd(), newCompleteCmd(), newModelsCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadSettings() (config.Settings, error) {
	if flagConfig != "" {
		l, err := config.Load(flagConfig)
		if err != nil {
			return config.Settings{}, err
		}
		return l.Get(), nil
	}
	return config.FromEnv()
}

func newClient() (*cerebras.Client, config.Settings, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, config.Settings{}, err
	}

	opts := []cerebras.ClientOption{cerebras.WithBaseURL(s.BaseURL)}
	if s.MaxRetries > 0 {
		retry := httpx.DefaultRetry()
		retry.MaxAttempts = s.MaxRetries
		opts = append(opts, cerebras.WithRetry(retry))
	}
	if flagVerbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, cerebras.WithLogger(logger))
	}

	client, err := cerebras.New(s.APIKey, opts...)
	if err != nil {
		return nil, config.Settings{}, err
	}
	return client, s, nil
}

func resolveModel(s config.Settings) string {
	if flagModel != "" {
		return flagModel
	}
	return s.Model
}

func requestContext(s config.Settings) (context.Context, context.CancelFunc) {
	if s.TimeoutSeconds <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), time.Duration(s.TimeoutSeconds)*time.Second)
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a chat message and print the reply",
		Long: `Send a chat message and print the reply.

The reply streams to stdout as it is generated; use --no-stream for a
single buffered response. With no argument the message is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := argOrStdin(args)
			if err != nil {
				return err
			}

			client, settings, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(settings)
			defer cancel()

			b := cerebras.NewChatCompletion(resolveModel(settings))
			if flagSystem != "" {
				b.SystemMessage(flagSystem)
			}
			b.UserMessage(message)
			if flagMaxTok > 0 {
				b.MaxTokens(flagMaxTok)
			}
			req := b.Build()

			if flagNoStrm {
				resp, err := client.ChatCompletion(ctx, req)
				if err != nil {
					return err
				}
				fmt.Println(resp.Text())
				return nil
			}

			stream, err := client.ChatCompletionStream(ctx, req)
			if err != nil {
				return err
			}
			defer stream.Close()

			for {
				chunk, err := stream.Recv()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				for _, choice := range chunk.Choices {
					if choice.Delta.Content != nil {
						fmt.Print(*choice.Delta.Content)
					}
				}
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagSystem, "system", "s", "", "system prompt")
	cmd.Flags().IntVar(&flagMaxTok, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().BoolVar(&flagNoStrm, "no-stream", false, "wait for the full response instead of streaming")
	return cmd
}

func newCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete [prompt]",
		Short: "Send a raw completion prompt and print the output",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := argOrStdin(args)
			if err != nil {
				return err
			}

			client, settings, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(settings)
			defer cancel()

			b := cerebras.NewCompletion(resolveModel(settings), prompt)
			if flagMaxTok > 0 {
				b.MaxTokens(flagMaxTok)
			}
			resp, err := client.Completion(ctx, b.Build())
			if err != nil {
				return err
			}
			fmt.Println(resp.Text())
			return nil
		},
	}
	cmd.Flags().IntVar(&flagMaxTok, "max-tokens", 0, "maximum tokens to generate")
	return cmd
}

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect available models",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List models available to the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, settings, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(settings)
			defer cancel()

			models, err := client.ListModels(ctx)
			if err != nil {
				return err
			}

			table := uitable.New()
			table.AddRow("ID", "OWNED BY", "CREATED")
			for _, m := range models.Data {
				table.AddRow(m.ID, m.OwnedBy, time.Unix(m.Created, 0).UTC().Format("2006-01-02"))
			}
			fmt.Println(table.String())
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <model-id>",
		Short: "Show one model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, settings, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(settings)
			defer cancel()

			m, err := client.GetModel(ctx, args[0])
			if err != nil {
				return err
			}

			table := uitable.New()
			table.RightAlign(0)
			table.Separator = " "
			table.AddRow("id:", m.ID)
			table.AddRow("object:", m.Object)
			table.AddRow("ownedBy:", m.OwnedBy)
			table.AddRow("created:", time.Unix(m.Created, 0).UTC().Format(time.RFC3339))
			fmt.Println(table.String())
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			switch flagOutput {
			case "json":
				s, err := info.ToJSON()
				if err != nil {
					return err
				}
				fmt.Println(s)
			case "short":
				fmt.Println(info.ShortString())
			default:
				fmt.Println(info.Text())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "output format (text, json, short)")
	return cmd
}

func argOrStdin(args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	r := bufio.NewReader(os.Stdin)
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("no input: pass a message argument or pipe text on stdin")
	}
	return text, nil
}
