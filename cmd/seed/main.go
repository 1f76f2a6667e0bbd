// Command seed creates the bootstrap users and, optionally, a small sample
// catalog, then prints a bearer token for each user.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/stocker/backend/internal/application/catalog"
	identityapp "github.com/stocker/backend/internal/application/identity"
	inventoryapp "github.com/stocker/backend/internal/application/inventory"
	partnerapp "github.com/stocker/backend/internal/application/partner"
	"github.com/stocker/backend/internal/domain/identity"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stocker/backend/internal/infrastructure/auth"
	"github.com/stocker/backend/internal/infrastructure/config"
	"github.com/stocker/backend/internal/infrastructure/logger"
	"github.com/stocker/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

var bootstrapUsers = []struct {
	username string
	role     identity.Role
}{
	{"admin", identity.RoleAdmin},
	{"clerk", identity.RoleEmployee},
	{"auditor", identity.RoleViewer},
}

func main() {
	var withCatalog bool
	flag.BoolVar(&withCatalog, "catalog", false, "Also create a sample catalog when none exists")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Database.Driver == config.DriverMemory {
		fmt.Fprintln(os.Stderr, "Nothing to seed: the in-memory store does not outlive this process")
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(context.Background(), cfg, withCatalog, log); err != nil {
		log.Error("Seeding failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, withCatalog bool, log *zap.Logger) error {
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	userRepo := persistence.NewGormUserRepository(db.DB)
	users := identityapp.NewUserService(userRepo, log)
	tokens := auth.NewJWTService(cfg.JWT)

	var admin *identity.User
	for _, b := range bootstrapUsers {
		user, err := ensureUser(ctx, users, userRepo, b.username, b.role)
		if err != nil {
			return fmt.Errorf("user %s: %w", b.username, err)
		}
		if user.Role == identity.RoleAdmin {
			admin = user
		}

		token, err := tokens.GenerateToken(user)
		if err != nil {
			return err
		}
		fmt.Printf("%-8s %-8s %s\n  Authorization: Bearer %s\n", user.Username, user.Role, user.ID, token.AccessToken)
	}

	if !withCatalog {
		return nil
	}
	txScope := persistence.NewGormTransactionScope(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	existing, err := categoryRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("Catalog already has categories, skipping sample data", zap.Int("categories", len(existing)))
		return nil
	}

	return seedCatalog(ctx,
		catalogapp.NewCategoryService(categoryRepo, txScope, log),
		catalogapp.NewProductService(persistence.NewGormProductRepository(db.DB), txScope, log),
		partnerapp.NewSupplierService(persistence.NewGormSupplierRepository(db.DB), persistence.NewGormProductRepository(db.DB), log),
		inventoryapp.NewStockAdjustmentService(txScope, nil, log),
		&admin.ID,
	)
}

// ensureUser creates the user unless the username is already taken
func ensureUser(ctx context.Context, users *identityapp.UserService, repo identity.UserRepository, username string, role identity.Role) (*identity.User, error) {
	created, err := users.Create(ctx, identityapp.CreateUserInput{
		Username: username,
		Email:    username + "@stocker.local",
		Role:     string(role),
	})
	if err == nil {
		return users.Find(ctx, created.ID)
	}
	if errors.Is(err, shared.ErrAlreadyExists) {
		return repo.FindByUsername(ctx, username)
	}
	return nil, err
}

func seedCatalog(
	ctx context.Context,
	categories *catalogapp.CategoryService,
	products *catalogapp.ProductService,
	suppliers *partnerapp.SupplierService,
	stock *inventoryapp.StockAdjustmentService,
	actingUserID *uuid.UUID,
) error {
	beverages, err := categories.Create(ctx, catalogapp.CreateCategoryRequest{Name: "Beverages"})
	if err != nil {
		return err
	}
	pantry, err := categories.Create(ctx, catalogapp.CreateCategoryRequest{Name: "Pantry"})
	if err != nil {
		return err
	}
	roaster, err := suppliers.Create(ctx, partnerapp.CreateSupplierRequest{
		Name:    "Northside Roasters",
		Email:   "orders@northside.example",
		Phone:   "+1-555-0101",
		Website: "https://northside.example",
	})
	if err != nil {
		return err
	}

	samples := []catalogapp.CreateProductRequest{
		{Name: "Espresso Beans 1kg", Price: price("18.90"), CategoryID: beverages.ID, SupplierIDs: []uuid.UUID{roaster.ID}, InitialQuantity: 24},
		{Name: "Cold Brew Concentrate", Price: price("7.50"), CategoryID: beverages.ID, SupplierIDs: []uuid.UUID{roaster.ID}, InitialQuantity: 6, ExpiryDate: "2027-03-31"},
		{Name: "Raw Cane Sugar", Price: price("3.20"), CategoryID: pantry.ID, InitialQuantity: 4},
	}
	var first uuid.UUID
	for i, req := range samples {
		created, err := products.Create(ctx, req, actingUserID)
		if err != nil {
			return fmt.Errorf("product %s: %w", req.Name, err)
		}
		if i == 0 {
			first = created.ID
		}
	}

	// one sale so the history view has more than the opening entry
	if _, err := stock.AdjustStockBy(ctx, first, -3, actingUserID, "sample sale"); err != nil {
		return fmt.Errorf("sample adjustment: %w", err)
	}
	fmt.Printf("Created %d categories, 1 supplier and %d products\n", 2, len(samples))
	return nil
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
