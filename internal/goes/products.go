package goes

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed products.txt
var productTable string

// ProductInfo describes one product family available in the archive.
type ProductInfo struct {
	Code        string
	Description string
}

var loadProducts = sync.OnceValue(func() []ProductInfo {
	var products []ProductInfo
	for _, line := range strings.Split(productTable, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		code, desc, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		products = append(products, ProductInfo{
			Code:        strings.TrimSpace(code),
			Description: strings.TrimSpace(desc),
		})
	}
	return products
})

// Products returns the known product table in file order (sorted by code).
// The table is advisory: the archive gains products over time, so an
// unknown code is suspicious but not rejected.
func Products() []ProductInfo {
	table := loadProducts()
	out := make([]ProductInfo, len(table))
	copy(out, table)
	return out
}

// Describe returns the table description for a product code, or "" when the
// code is not in the table.
func Describe(code string) string {
	for _, p := range loadProducts() {
		if p.Code == code {
			return p.Description
		}
	}
	return ""
}

// KnownProduct reports whether code appears in the product table.
func KnownProduct(code string) bool { return Describe(code) != "" }
