package tool

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

const ToolInventoryQuery = "inventory.query"

const maxInventoryRows = 5

type InventoryConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

// Product is a row of the store's product table.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	SKU       string    `bun:"sku,pk"`
	Name      string    `bun:"name,notnull"`
	Stock     int       `bun:"stock,notnull"`
	Price     float64   `bun:"price,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:now()"`
}

// Inventory answers current stock and price questions from Postgres. It
// adapts free text into a lookup: an embedded SKU wins, otherwise the text
// is matched against product names.
type Inventory struct {
	db bun.IDB
}

func NewInventory(db bun.IDB) (*Inventory, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database handle is required", contractx.ErrValidation)
	}
	return &Inventory{db: db}, nil
}

// OpenDB builds the bun Postgres handle the inventory tool and the
// transcript store share.
func OpenDB(conf InventoryConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(conf.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", contractx.ErrValidation)
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func (i *Inventory) Name() string { return ToolInventoryQuery }

func (i *Inventory) Description() string {
	return "Query current product stock and price by SKU or product name."
}

func (i *Inventory) Execute(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", fmt.Errorf("%w: inventory query is empty", contractx.ErrInvalidArgument)
	}

	var products []Product
	q := i.db.NewSelect().Model(&products).Limit(maxInventoryRows)
	if sku := skuPattern.FindString(query); sku != "" {
		q = q.Where("p.sku = ?", strings.ToUpper(sku))
	} else {
		q = q.Where("p.name ILIKE ?", "%"+query+"%").Order("p.name ASC")
	}

	if err := q.Scan(ctx); err != nil {
		return "", wrapTransportError("inventory", err)
	}

	if len(products) == 0 {
		return "No products matched: " + query, nil
	}
	return renderProducts(products), nil
}

func renderProducts(products []Product) string {
	var sb strings.Builder
	for i, p := range products {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s (%s): %d units in stock at $%.2f", p.Name, p.SKU, p.Stock, p.Price)
	}
	return sb.String()
}
