package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clinicsearch/internal/domain"
	"clinicsearch/internal/usecase"
)

var (
	searchKeyword string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <type>",
	Short: "Run an ad-hoc suggestion query",
	Long: `Search embedded entities by keyword.

Examples:
  clinicsearch search treatments -q "laser hair removal"
  clinicsearch search doctors -q "acne specialist" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchKeyword, "keyword", "q", "", "search keyword (required)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("keyword")
}

func runSearch(cmd *cobra.Command, args []string) error {
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
	matcher := usecase.NewMatcher(st, emb, newTranslator(), matcherOptions(), logger)

	suggestions, err := matcher.Search(ctx, t, searchKeyword)
	if errors.Is(err, domain.ErrNoEmbeddedEntities) {
		return fmt.Errorf("no embedded %s rows. Run 'clinicsearch embed %s' first", t, t)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		output, _ := json.MarshalIndent(suggestions, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(suggestions) == 0 {
		fmt.Println("No matches found.")
		return nil
	}
	fmt.Printf("Found %d suggestions for: %s\n\n", len(suggestions), searchKeyword)
	for i, s := range suggestions {
		fmt.Printf("%2d. %-40s score=%.3f\n", i+1, entityLabel(s.Entity), s.Score)
	}
	return nil
}

func entityLabel(e domain.Entity) string {
	switch v := e.(type) {
	case *domain.Treatment:
		return v.Name
	case *domain.Product:
		return v.Name
	case *domain.Doctor:
		return v.Name
	case *domain.Clinic:
		return v.Name
	}
	return e.EntityID()
}
