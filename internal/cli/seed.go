package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"clinicsearch/internal/adapter/fs"
	"clinicsearch/internal/domain"
	"clinicsearch/internal/port"
)

var (
	seedIncludes []string
	seedExcludes []string
)

var seedCmd = &cobra.Command{
	Use:   "seed [dir]",
	Short: "Load entity fixtures into the store",
	Long: `Load entity rows from JSON fixture files. Each file holds any
combination of the four collections:

  {"treatments": [...], "products": [...], "doctors": [...], "clinics": [...]}

Rows without an id get a generated one. Existing rows with the same id
are overwritten; their stored vectors are preserved.

Examples:
  clinicsearch seed ./fixtures
  clinicsearch seed ./data --include 'seed/**/*.json'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringSliceVar(&seedIncludes, "include", []string{"**/*.json"}, "fixture file globs")
	seedCmd.Flags().StringSliceVar(&seedExcludes, "exclude", nil, "globs to skip")
}

// fixtureFile is the on-disk seed format.
type fixtureFile struct {
	Treatments []domain.Treatment `json:"treatments"`
	Products   []domain.Product   `json:"products"`
	Doctors    []domain.Doctor    `json:"doctors"`
	Clinics    []domain.Clinic    `json:"clinics"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	walker := fs.NewWalker(seedIncludes, seedExcludes)
	files, err := walker.Walk(dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no fixture files matched under %s", dir)
	}

	total := 0
	for _, path := range files {
		n, err := seedFile(ctx, st, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		total += n
	}

	fmt.Printf("Seeded %d entities from %d files\n", total, len(files))
	return nil
}

func seedFile(ctx context.Context, st port.EntityStore, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var fixture fixtureFile
	if err := json.Unmarshal(data, &fixture); err != nil {
		return 0, fmt.Errorf("invalid fixture: %w", err)
	}

	var entities []domain.Entity
	for i := range fixture.Treatments {
		entities = append(entities, &fixture.Treatments[i])
	}
	for i := range fixture.Products {
		entities = append(entities, &fixture.Products[i])
	}
	for i := range fixture.Doctors {
		entities = append(entities, &fixture.Doctors[i])
	}
	for i := range fixture.Clinics {
		entities = append(entities, &fixture.Clinics[i])
	}

	for _, e := range entities {
		ensureID(e)
		if err := st.Put(ctx, e); err != nil {
			return 0, err
		}
	}
	return len(entities), nil
}

func ensureID(e domain.Entity) {
	switch v := e.(type) {
	case *domain.Treatment:
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
	case *domain.Product:
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
	case *domain.Doctor:
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
	case *domain.Clinic:
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
	}
}
