package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gampack/pricesync/internal/config"
	"github.com/gampack/pricesync/internal/database"
	"github.com/gampack/pricesync/internal/database/repository"
	"github.com/gampack/pricesync/internal/service"
	"github.com/gampack/pricesync/internal/sheet"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	resolver := service.NewResolverService(db)
	importer := service.NewImportService(db, resolver)
	comparisons := service.NewComparisonService(db)
	mapper := &service.HeaderMapper{FuzzyThreshold: cfg.Import.FuzzyThreshold}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "import":
		runImport(ctx, os.Args[2:], cfg, mapper, importer)
	case "products":
		runProducts(ctx, os.Args[2:], db)
	case "unmatched":
		runUnmatched(ctx, os.Args[2:], resolver)
	case "link":
		runLink(ctx, os.Args[2:], resolver)
	case "unlink":
		runUnlink(ctx, os.Args[2:], resolver)
	case "delete":
		runDelete(ctx, os.Args[2:], resolver)
	case "equivalences":
		runEquivalences(ctx, os.Args[2:], resolver)
	case "imports":
		runImports(ctx, db)
	case "compare":
		runCompare(ctx, os.Args[2:], comparisons)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: pricesync <command> [flags]

commands:
  import        import a spreadsheet into a catalog
  products      list a catalog
  unmatched     list products with no equivalence
  link          manually link an external and an internal product
  unlink        remove an equivalence
  delete        delete a product
  equivalences  list linked pairs
  imports       list past import batches
  compare       compare prices of linked pairs`)
}

func runImport(ctx context.Context, args []string, cfg config.Config, mapper *service.HeaderMapper, importer *service.ImportService) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "spreadsheet path (required)")
	sheetName := fs.String("sheet", "", "sheet name (default: first sheet)")
	side := fs.String("side", "external", "target catalog: external or internal")
	supplier := fs.String("supplier", cfg.Import.DefaultSupplier, "supplier name (external imports)")
	headerRow := fs.Int("header-row", 0, "1-based header row (default: auto-detect)")
	nameHeader := fs.String("name-header", "", "override the header carrying the product name")
	codeHeader := fs.String("code-header", "", "override the header carrying the product code")
	priceHeader := fs.String("price-header", "", "override the header carrying the final price")
	_ = fs.Parse(args)

	if *file == "" {
		log.Fatal("import: -file is required")
	}
	catalogSide := repository.Side(*side)

	matrix, err := sheet.ReadMatrix(*file, *sheetName)
	if err != nil {
		log.Fatalf("read spreadsheet: %v", err)
	}

	row := *headerRow
	if row == 0 {
		row = mapper.SuggestHeaderRow(catalogSide, matrix)
		if row == 0 {
			log.Fatal("import: could not detect a header row; pass -header-row")
		}
	}
	if row < 1 || row > len(matrix) {
		log.Fatalf("import: header row %d is outside the sheet (%d rows)", row, len(matrix))
	}

	mapping := mapper.MapHeaders(catalogSide, matrix[row-1])
	for f, override := range map[service.Field]string{
		service.FieldName:  *nameHeader,
		service.FieldCode:  *codeHeader,
		service.FieldPrice: *priceHeader,
	} {
		if override != "" {
			mapping[f] = override
		}
	}
	var unmapped []string
	for _, f := range []service.Field{service.FieldName, service.FieldCode, service.FieldPrice} {
		if _, ok := mapping[f]; !ok {
			unmapped = append(unmapped, string(f))
		}
	}
	if len(unmapped) > 0 {
		log.Fatalf("import: could not map %s; pass -%s-header", strings.Join(unmapped, ", "), unmapped[0])
	}

	res, err := importer.ImportBatch(ctx, catalogSide, *supplier, matrix, row, mapping)
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	fmt.Printf("inserted %d, updated %d, price changed %d, skipped %d, auto-linked %d\n",
		res.Inserted, res.Updated, res.UpdatedPriceChanged, res.Skipped, res.Linked)
	for _, skip := range res.Skips {
		fmt.Printf("  row %d skipped: %s\n", skip.Line, skip.Reason)
	}
}

func runProducts(ctx context.Context, args []string, db *sql.DB) {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	side := fs.String("side", "external", "catalog side: external or internal")
	_ = fs.Parse(args)

	switch repository.Side(*side) {
	case repository.SideExternal:
		products, err := repository.NewExternalProductRepo(db).List(ctx)
		if err != nil {
			log.Fatalf("products: %v", err)
		}
		for _, p := range products {
			fmt.Printf("%d\t%s\t%s\t%s\t%s\teffective %s\n",
				p.ID, p.Code, p.Name, cents(p.FinalPriceCents), p.Supplier, p.EffectiveDate)
		}
	case repository.SideInternal:
		products, err := repository.NewInternalProductRepo(db).List(ctx)
		if err != nil {
			log.Fatalf("products: %v", err)
		}
		for _, p := range products {
			fmt.Printf("%d\t%s\t%s\t%s\teffective %s\n",
				p.ID, p.Code, p.Name, cents(p.FinalPriceCents), p.EffectiveDate)
		}
	default:
		log.Fatalf("products: unknown side %q", *side)
	}
}

func runUnmatched(ctx context.Context, args []string, resolver *service.ResolverService) {
	fs := flag.NewFlagSet("unmatched", flag.ExitOnError)
	side := fs.String("side", "external", "catalog side: external or internal")
	_ = fs.Parse(args)

	products, err := resolver.ListUnmatched(ctx, repository.Side(*side))
	if err != nil {
		log.Fatalf("unmatched: %v", err)
	}
	for _, p := range products {
		line := fmt.Sprintf("%d\t%s\t%s\t%s", p.ProductID, p.Code, p.Name, cents(p.FinalPriceCents))
		if p.Supplier != "" {
			line += "\t" + p.Supplier
		}
		fmt.Println(line)
	}
}

func runLink(ctx context.Context, args []string, resolver *service.ResolverService) {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	externalID := fs.Int64("external", 0, "external product id (required)")
	internalID := fs.Int64("internal", 0, "internal product id (required)")
	_ = fs.Parse(args)

	if *externalID == 0 || *internalID == 0 {
		log.Fatal("link: -external and -internal are required")
	}
	eq, err := resolver.CreateManualLink(ctx, *externalID, *internalID)
	if err != nil {
		log.Fatalf("link: %v", err)
	}
	fmt.Printf("linked external %d to internal %d (equivalence %d)\n", eq.ExternalID, eq.InternalID, eq.ID)
}

func runUnlink(ctx context.Context, args []string, resolver *service.ResolverService) {
	fs := flag.NewFlagSet("unlink", flag.ExitOnError)
	id := fs.Int64("id", 0, "equivalence id (required)")
	_ = fs.Parse(args)

	if *id == 0 {
		log.Fatal("unlink: -id is required")
	}
	if err := resolver.DeleteLink(ctx, *id); err != nil {
		log.Fatalf("unlink: %v", err)
	}
	fmt.Printf("equivalence %d removed\n", *id)
}

func runDelete(ctx context.Context, args []string, resolver *service.ResolverService) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	side := fs.String("side", "external", "catalog side: external or internal")
	id := fs.Int64("id", 0, "product id (required)")
	_ = fs.Parse(args)

	if *id == 0 {
		log.Fatal("delete: -id is required")
	}
	if err := resolver.DeleteProduct(ctx, repository.Side(*side), *id); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Printf("%s product %d deleted\n", *side, *id)
}

func runEquivalences(ctx context.Context, args []string, resolver *service.ResolverService) {
	fs := flag.NewFlagSet("equivalences", flag.ExitOnError)
	search := fs.String("q", "", "free-text filter")
	sortKey := fs.String("sort", "id", "sort key: id, created_at, criterion, supplier, external_name, internal_name")
	_ = fs.Parse(args)

	views, err := resolver.ListEquivalences(ctx, repository.EquivalenceFilter{Search: *search, SortKey: *sortKey})
	if err != nil {
		log.Fatalf("equivalences: %v", err)
	}
	for _, v := range views {
		fmt.Printf("%d\t[%s]\t%s %s (%s, %s) <-> %s %s (%s)\n",
			v.ID, v.Criterion,
			v.ExternalCode, v.ExternalName, cents(v.ExternalPriceCents), v.Supplier,
			v.InternalCode, v.InternalName, cents(v.InternalPriceCents))
	}
}

func runImports(ctx context.Context, db *sql.DB) {
	recs, err := repository.NewImportRepo(db).List(ctx)
	if err != nil {
		log.Fatalf("imports: %v", err)
	}
	for _, r := range recs {
		supplier := r.Supplier
		if supplier == "" {
			supplier = "-"
		}
		fmt.Printf("%s\t%s\t%s\t%s\tinserted %d, updated %d, price changed %d, skipped %d\n",
			r.ImportedAt, r.Side, supplier, r.ID,
			r.Inserted, r.Updated, r.UpdatedPriceChanged, r.Skipped)
	}
}

func runCompare(ctx context.Context, args []string, comparisons *service.ComparisonService) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	from := fs.String("from", "", "effective date lower bound (2006-01-02)")
	to := fs.String("to", "", "effective date upper bound (2006-01-02)")
	search := fs.String("q", "", "free-text filter")
	_ = fs.Parse(args)

	rows, err := comparisons.ListComparisons(ctx, repository.ComparisonFilter{
		FromDate: *from,
		ToDate:   *to,
		Search:   *search,
	})
	if err != nil {
		log.Fatalf("compare: %v", err)
	}
	for _, c := range rows {
		diff := "n/a"
		if c.PriceDifferencePercent != nil {
			diff = fmt.Sprintf("%+.2f%%", *c.PriceDifferencePercent)
		}
		fmt.Printf("%s\t%s\text %s\tint %s\t%s\n",
			c.ExternalCode, c.ExternalName, cents(c.ExternalPriceCents), cents(c.InternalPriceCents), diff)
	}
}

func cents(v int64) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}
