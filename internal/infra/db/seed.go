package db

import (
	"context"
	"fmt"

	"perfumeshop/internal/domain/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SeedResult struct {
	Brands   int
	Types    int
	Products int
}

type seedProduct struct {
	name, desc, brand, kind, price string
	stock                          int64
}

var (
	seedBrands = []string{"Chanel", "Dior", "Tom Ford", "Creed", "Maison Margiela"}
	seedTypes  = []string{"Eau de Parfum", "Eau de Toilette", "Parfum", "Eau de Cologne"}

	seedProducts = []seedProduct{
		{"No. 5", "Aldehydic floral, the classic.", "Chanel", "Eau de Parfum", "135.00", 20},
		{"Bleu de Chanel", "Woody aromatic with citrus top notes.", "Chanel", "Eau de Toilette", "110.00", 35},
		{"Sauvage", "Fresh spicy bergamot and ambroxan.", "Dior", "Eau de Toilette", "98.00", 40},
		{"Miss Dior", "Rose and peony, soft and bright.", "Dior", "Eau de Parfum", "125.00", 8},
		{"Oud Wood", "Smoky oud with sandalwood.", "Tom Ford", "Parfum", "295.00", 5},
		{"Aventus", "Pineapple, birch and musk.", "Creed", "Eau de Parfum", "445.00", 12},
		{"Replica Jazz Club", "Rum, tobacco and vanilla.", "Maison Margiela", "Eau de Toilette", "68.00", 50},
		{"Silver Mountain Water", "Green tea and blackcurrant.", "Creed", "Eau de Cologne", "39.50", 3},
	}
)

// ブランド・種類・商品の初期データ。名前で存在チェックするので何度流してもよい
func Seed(ctx context.Context, gdb *gorm.DB) (SeedResult, error) {
	var res SeedResult
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		brandIDs := make(map[string]int64, len(seedBrands))
		for _, name := range seedBrands {
			b := model.Brand{Name: name}
			r := tx.Where("name = ?", name).FirstOrCreate(&b)
			if r.Error != nil {
				return fmt.Errorf("seed brand %s: %w", name, r.Error)
			}
			res.Brands += int(r.RowsAffected)
			brandIDs[name] = b.ID
		}

		typeIDs := make(map[string]int64, len(seedTypes))
		for _, name := range seedTypes {
			t := model.ProductType{Name: name}
			r := tx.Where("name = ?", name).FirstOrCreate(&t)
			if r.Error != nil {
				return fmt.Errorf("seed type %s: %w", name, r.Error)
			}
			res.Types += int(r.RowsAffected)
			typeIDs[name] = t.ID
		}

		for _, sp := range seedProducts {
			p := model.Product{
				Name:        sp.name,
				Description: sp.desc,
				Price:       decimal.RequireFromString(sp.price),
				Stock:       sp.stock,
				IsActive:    true,
				BrandID:     brandIDs[sp.brand],
				TypeID:      typeIDs[sp.kind],
			}
			r := tx.Omit("Brand", "Type").Where("name = ? AND brand_id = ?", p.Name, p.BrandID).FirstOrCreate(&p)
			if r.Error != nil {
				return fmt.Errorf("seed product %s: %w", sp.name, r.Error)
			}
			res.Products += int(r.RowsAffected)
		}
		return nil
	})
	return res, err
}
