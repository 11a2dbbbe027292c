package catalog

import (
	"context"

	"github.com/gestock/backend/internal/domain/catalog"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockUsage counts stock rows matching a filter
type StockUsage interface {
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// BillingUsage counts billing lines referencing a product
type BillingUsage interface {
	CountItemsByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

// ProductService handles product catalog operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	stockUsage   StockUsage
	billingUsage BillingUsage
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, stockUsage StockUsage, billingUsage BillingUsage) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		stockUsage:   stockUsage,
		billingUsage: billingUsage,
	}
}

// Create creates a new product with a generated reference
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	reference, err := s.productRepo.GenerateReference(ctx)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(reference, req.Name, catalog.ProductType(req.ProductType), req.SellingPrice)
	if err != nil {
		return nil, err
	}
	if err := product.UpdateStockThresholds(req.LimitStockAlert, req.OptimalStock); err != nil {
		return nil, err
	}
	if req.WarehouseID != nil {
		product.AssignWarehouse(*req.WarehouseID)
	}
	product.SetExpiration(req.ExpiredAt)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetByReference retrieves a product by its unique reference
func (s *ProductService) GetByReference(ctx context.Context, reference string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	if filter.ProductType != "" {
		f.Filters["product_type"] = filter.ProductType
	}

	products, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update changes the mutable fields of a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := product.UpdateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.SellingPrice != nil {
		if err := product.UpdateSellingPrice(*req.SellingPrice); err != nil {
			return nil, err
		}
	}
	if req.LimitStockAlert != nil || req.OptimalStock != nil {
		limit := product.LimitStockAlert
		optimal := product.OptimalStock
		if req.LimitStockAlert != nil {
			limit = *req.LimitStockAlert
		}
		if req.OptimalStock != nil {
			optimal = *req.OptimalStock
		}
		if err := product.UpdateStockThresholds(limit, optimal); err != nil {
			return nil, err
		}
	}
	if req.WarehouseID != nil {
		product.AssignWarehouse(*req.WarehouseID)
	}
	if req.ExpiredAt != nil {
		product.SetExpiration(req.ExpiredAt)
	}

	product.IncrementVersion()
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product from the catalog. Products referenced by stock
// rows or billing lines are part of the audit trail and stay.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}

	f := shared.DefaultFilter()
	f.Filters["product_id"] = id
	stockRows, err := s.stockUsage.Count(ctx, f)
	if err != nil {
		return err
	}
	if stockRows > 0 {
		return shared.NewDomainError("RESOURCE_IN_USE",
			"Product has stock history and cannot be deleted")
	}

	billingLines, err := s.billingUsage.CountItemsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if billingLines > 0 {
		return shared.NewDomainError("RESOURCE_IN_USE",
			"Product is referenced by billing documents and cannot be deleted")
	}

	return s.productRepo.Delete(ctx, id)
}
