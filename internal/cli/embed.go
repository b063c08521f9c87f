package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"clinicsearch/internal/domain"
	"clinicsearch/internal/usecase"
)

var embedID string

var embedCmd = &cobra.Command{
	Use:   "embed <type>",
	Short: "Generate embeddings for entities missing a vector",
	Long: `Generate and persist embedding vectors.

Without --id, embeds every row of the type that has no stored vector
yet, one embedding call at a time. Rows that fail are logged and the
batch continues.

Examples:
  clinicsearch embed treatments
  clinicsearch embed doctors --id d42`,
	Args: cobra.ExactArgs(1),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
	embedCmd.Flags().StringVar(&embedID, "id", "", "re-embed a single entity by id")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	t, err := domain.ParseEntityType(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	emb, err := newEmbedder()
	if err != nil {
		return err
	}
	generator := usecase.NewGenerator(st, emb, logger)

	if embedID != "" {
		if err := generator.Regenerate(ctx, t, embedID); err != nil {
			return fmt.Errorf("re-embedding failed: %w", err)
		}
		fmt.Printf("Re-embedded %s %s\n", t, embedID)
		return nil
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	res, err := generator.GenerateAll(ctx, t, progress)
	if err != nil {
		return fmt.Errorf("embedding batch failed: %w", err)
	}

	fmt.Printf("Embedded %d of %d %s rows (%d skipped, %d failed)\n",
		res.Embedded, res.Total, t, res.Skipped, res.Failed)
	return nil
}
