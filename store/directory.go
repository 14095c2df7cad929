package store

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"github.com/supplierx/poagent/dialogue"
	"github.com/supplierx/poagent/types"
)

// Store is the MySQL-backed implementation of the agent's data collaborators:
// reference search, order persistence, order lookup, and read-only query
// execution for the Q&A path.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Search implements resolve.Directory with a case-insensitive LIKE match on
// the record name. An empty query returns the first records of the category.
func (s *Store) Search(ctx context.Context, category types.Category, query string, limit int) ([]types.ReferenceRecord, error) {
	tx := s.db.WithContext(ctx).Limit(limit)
	pattern := "%" + query + "%"

	switch category {
	case types.CategorySupplier:
		var rows []Supplier
		if err := tx.Where("supplier_name LIKE ?", pattern).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("search suppliers: %w", err)
		}
		out := make([]types.ReferenceRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, types.ReferenceRecord{
				ID: fmt.Sprint(r.ID), Name: r.Name, Code: r.Code,
				Attrs: map[string]string{"city": r.City},
			})
		}
		return out, nil
	case types.CategoryPlant:
		var rows []Plant
		if err := tx.Where("plant_name LIKE ?", pattern).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("search plants: %w", err)
		}
		out := make([]types.ReferenceRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, types.ReferenceRecord{
				ID: fmt.Sprint(r.ID), Name: r.Name, Code: r.Code,
				Attrs: map[string]string{"city": r.City},
			})
		}
		return out, nil
	case types.CategoryMaterial:
		var rows []Material
		if err := tx.Where("material_name LIKE ?", pattern).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("search materials: %w", err)
		}
		out := make([]types.ReferenceRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, types.ReferenceRecord{
				ID: fmt.Sprint(r.ID), Name: r.Name, Code: r.Code,
				Attrs: map[string]string{"unit": r.Unit},
			})
		}
		return out, nil
	case types.CategoryPurchaseOrg:
		var rows []PurchaseOrg
		if err := tx.Where("org_name LIKE ?", pattern).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("search purchase organizations: %w", err)
		}
		out := make([]types.ReferenceRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, types.ReferenceRecord{ID: fmt.Sprint(r.ID), Name: r.Name, Code: r.Code})
		}
		return out, nil
	case types.CategoryPurchaseGroup:
		var rows []PurchaseGroup
		if err := tx.Where("group_name LIKE ?", pattern).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("search purchase groups: %w", err)
		}
		out := make([]types.ReferenceRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, types.ReferenceRecord{ID: fmt.Sprint(r.ID), Name: r.Name, Code: r.Code})
		}
		return out, nil
	case types.CategoryCurrency:
		var rows []Currency
		if err := tx.Where("code LIKE ? OR name LIKE ?", pattern, pattern).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("search currencies: %w", err)
		}
		out := make([]types.ReferenceRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, types.ReferenceRecord{ID: fmt.Sprint(r.ID), Name: r.Name, Code: r.Code})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
}

// Create implements dialogue.OrderCreator: it assigns the next sequential
// order number and inserts the row in one transaction.
func (s *Store) Create(ctx context.Context, order *dialogue.Order) (string, error) {
	items, err := sonic.MarshalString(order.LineItems)
	if err != nil {
		return "", fmt.Errorf("encode line items: %w", err)
	}

	var number string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&PurchaseOrder{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		number = fmt.Sprintf("IND-PO-%05d", count+1)

		row := PurchaseOrder{
			Number:            number,
			OrderDate:         order.OrderDate,
			ValidityDate:      order.ValidityDate,
			OrderType:         order.OrderType,
			SupplierName:      order.Supplier.Name,
			SupplierCode:      order.Supplier.Code,
			Currency:          order.Currency,
			PlantName:         order.Plant.Name,
			PlantCode:         order.Plant.Code,
			PurchaseOrg:       order.PurchaseOrg.Name,
			PurchaseOrgCode:   order.PurchaseOrg.Code,
			PurchaseGroup:     order.PurchaseGroup.Name,
			PurchaseGroupCode: order.PurchaseGroup.Code,
			Project:           order.Project,
			PaymentTerm:       order.PaymentTerm,
			IncoTerm:          order.IncoTerm,
			Remarks:           order.Remarks,
			LineItems:         items,
			TotalAmount:       order.GrandTotal,
			Status:            order.Status,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	order.Number = number
	return number, nil
}

// FindOrder returns a persisted order by its number.
func (s *Store) FindOrder(ctx context.Context, number string) (*dialogue.Order, error) {
	var row PurchaseOrder
	if err := s.db.WithContext(ctx).Where("po_number = ?", number).First(&row).Error; err != nil {
		return nil, fmt.Errorf("find order %s: %w", number, err)
	}

	var items []dialogue.LineItem
	if row.LineItems != "" {
		if err := sonic.UnmarshalString(row.LineItems, &items); err != nil {
			return nil, fmt.Errorf("decode line items of %s: %w", number, err)
		}
	}
	return &dialogue.Order{
		Number:        row.Number,
		OrderDate:     row.OrderDate,
		ValidityDate:  row.ValidityDate,
		OrderType:     row.OrderType,
		Supplier:      types.ReferenceRecord{Name: row.SupplierName, Code: row.SupplierCode},
		Currency:      row.Currency,
		Plant:         types.ReferenceRecord{Name: row.PlantName, Code: row.PlantCode},
		PurchaseOrg:   types.ReferenceRecord{Name: row.PurchaseOrg, Code: row.PurchaseOrgCode},
		PurchaseGroup: types.ReferenceRecord{Name: row.PurchaseGroup, Code: row.PurchaseGroupCode},
		Project:       row.Project,
		PaymentTerm:   row.PaymentTerm,
		IncoTerm:      row.IncoTerm,
		Remarks:       row.Remarks,
		LineItems:     items,
		GrandTotal:    row.TotalAmount,
		Status:        row.Status,
	}, nil
}

// SchemaDescription implements answer.QueryRunner.
func (s *Store) SchemaDescription(ctx context.Context) (string, error) {
	return `Tables:
- supplier_details(id, supplier_name, supplier_code, city)
- plants(id, plant_name, plant_code, city)
- materials(id, material_name, material_code, unit)
- purchase_organization(id, org_name, org_code)
- purchase_groups(id, group_name, group_code)
- currencies(id, code, name)
- independent_purchase_orders(id, po_number, po_date, validity_date, po_type, supplier_name, currency, plant_name, purchase_org, purchase_group, project, payment_term, inco_term, remarks, line_items, total_amount, status, created_at)`, nil
}

// RunSelect implements answer.QueryRunner: it executes one SELECT and
// stringifies every cell for tabular rendering.
func (s *Store) RunSelect(ctx context.Context, query string) ([]string, [][]string, error) {
	rows, err := s.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	var out [][]string
	for rows.Next() {
		cells := make([]any, len(columns))
		for i := range cells {
			cells[i] = new(any)
		}
		if err := rows.Scan(cells...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		record := make([]string, len(columns))
		for i, c := range cells {
			record[i] = stringifyCell(*(c.(*any)))
		}
		out = append(out, record)
	}
	return columns, out, rows.Err()
}

func stringifyCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprint(t)
	}
}
