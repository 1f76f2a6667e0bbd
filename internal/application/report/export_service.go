package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/partner"
	"github.com/stocker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Export kinds, also used as archive key prefixes
const (
	ExportInventory = "inventory"
	ExportSuppliers = "suppliers"
)

var (
	inventoryHeader = []string{"Product", "Category", "Quantity in Stock", "Price", "Low Stock"}
	suppliersHeader = []string{"Supplier", "Email", "Phone", "Website", "Products"}
)

// ExportArchiver keeps a copy of every generated export
type ExportArchiver interface {
	Archive(ctx context.Context, kind string, generatedAt time.Time, data []byte) (string, error)
}

// ExportService renders catalog data as CSV
type ExportService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	supplierRepo partner.SupplierRepository
	archiver     ExportArchiver
	logger       *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	supplierRepo partner.SupplierRepository,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		logger:       logger,
	}
}

// SetArchiver enables archiving of exports
func (s *ExportService) SetArchiver(archiver ExportArchiver) {
	s.archiver = archiver
}

// InventoryCSV writes one row per product ordered by name
func (s *ExportService) InventoryCSV(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return shared.NewPersistenceError(err)
	}
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return shared.NewPersistenceError(err)
	}
	categoryNames := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	rows := make([][]string, 0, len(products)+1)
	rows = append(rows, inventoryHeader)
	for i := range products {
		p := &products[i]
		rows = append(rows, []string{
			p.Name,
			categoryNames[p.CategoryID],
			strconv.Itoa(p.QuantityInStock),
			p.Price.StringFixed(2),
			yesNo(p.IsLowStock()),
		})
	}
	return s.write(ctx, ExportInventory, w, rows)
}

// SuppliersCSV writes one row per supplier with its product names
func (s *ExportService) SuppliersCSV(ctx context.Context, w io.Writer) error {
	suppliers, err := s.supplierRepo.FindAll(ctx)
	if err != nil {
		return shared.NewPersistenceError(err)
	}

	rows := make([][]string, 0, len(suppliers)+1)
	rows = append(rows, suppliersHeader)
	for i := range suppliers {
		sp := &suppliers[i]
		products, err := s.productRepo.FindBySupplier(ctx, sp.ID)
		if err != nil {
			return shared.NewPersistenceError(err)
		}
		names := make([]string, len(products))
		for j := range products {
			names[j] = products[j].Name
		}
		rows = append(rows, []string{sp.Name, sp.Email, sp.Phone, sp.Website, strings.Join(names, "; ")})
	}
	return s.write(ctx, ExportSuppliers, w, rows)
}

func (s *ExportService) write(ctx context.Context, kind string, w io.Writer, rows [][]string) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	if s.archiver != nil {
		key, err := s.archiver.Archive(ctx, kind, time.Now().UTC(), buf.Bytes())
		if err != nil {
			s.logger.Warn("export archive failed", zap.String("kind", kind), zap.Error(err))
		} else {
			s.logger.Info("export archived", zap.String("kind", kind), zap.String("key", key))
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
