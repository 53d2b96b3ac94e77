package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/wildaware/internal/pipeline"
)

var (
	classifyJSON    bool
	classifyCity    string
	classifyTimeout time.Duration
	llmProvider     string
	llmModel        string
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Classify an encounter description and show safety guidance",
	Long: `Classify a free-text description of an animal encounter:
- Guess the species from keyword matches
- Rate urgency and detect what the user wants
- Show the species' safety guidelines
- List nearby rescue contacts (24x7 services first)

Example:
  wildaware classify "There's a snake in my bedroom"
  wildaware classify "stray dog following me, who to call?" --city Kochi
  wildaware classify "monkey took my bag" --json
  wildaware classify "snake near the well" --llm openai`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the result as JSON")
	classifyCmd.Flags().StringVar(&classifyCity, "city", "", "city used to rank rescue contacts")
	classifyCmd.Flags().DurationVar(&classifyTimeout, "timeout", time.Minute, "overall timeout")

	// LLM flags
	classifyCmd.Flags().StringVar(&llmProvider, "llm", "", "LLM provider for the reply (openai, anthropic, ollama)")
	classifyCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	_ = viper.BindPFlag("llm.provider", classifyCmd.Flags().Lookup("llm"))
	_ = viper.BindPFlag("llm.model", classifyCmd.Flags().Lookup("llm-model"))
}

func runClassify(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(cmd.Context(), classifyTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider, err := buildCatalogProvider(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	defer closeProvider(provider, logger)

	p := pipeline.NewPipeline(cfg, provider, nil, logger)
	result, err := p.Handle(ctx, pipeline.ChatRequest{Message: message, City: classifyCity})
	if err != nil {
		return fmt.Errorf("classify failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	if classifyJSON {
		return renderer.RenderJSON(cmd.OutOrStdout(), result)
	}
	return renderer.RenderText(cmd.OutOrStdout(), result)
}
