package main

import (
	"context"
	"log/slog"

	"github.com/maputoimporthub/storefront/internal/store"
)

// seedMemoryStore loads the default admin account and a small demo catalog.
// Postgres deployments get the same data from the seed migration instead.
func seedMemoryStore(ctx context.Context, mem *store.MemoryStore, logger *slog.Logger) {
	mem.PutAdminUser("admin@maputoimporthub.mz", "admin123", "Admin")

	products := []store.NewProduct{
		{
			Name:        "Tijolo Cerâmico 20x20cm",
			Description: "Tijolo cerâmico de alta qualidade, dimensões 20x20cm, ideal para construção residencial e comercial. Importado diretamente da China, oferece excelente resistência e durabilidade.",
			Category:    "Construção",
			PriceMZN:    25,
			PriceUSD:    "0.39",
			Stock:       5000,
			Images:      []string{"https://images.unsplash.com/photo-1590642916589-592bca10dfbf?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600"},
			Specifications: map[string]string{
				"Dimensões":   "20x20x10cm",
				"Material":    "Cerâmica vermelha",
				"Resistência": "Alta",
				"Origem":      "China",
				"Garantia":    "12 meses",
			},
			Status: "active",
		},
		{
			Name:        "Janela Alumínio 120x120cm",
			Description: "Janela de alumínio com vidro temperado, acabamento branco, sistema de abertura correr. Perfeita para residências e escritórios.",
			Category:    "Construção",
			PriceMZN:    1600,
			PriceUSD:    "25.00",
			Stock:       100,
			Images:      []string{"https://images.unsplash.com/photo-1449844908441-8829872d2607?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600"},
			Specifications: map[string]string{
				"Dimensões": "120x120cm",
				"Material":  "Alumínio + Vidro",
				"Cor":       "Branco",
				"Abertura":  "Correr",
				"Garantia":  "24 meses",
			},
			Status: "active",
		},
		{
			Name:        "Smartphone Android 64GB",
			Description: "Smartphone com tela 6.5\", 4GB RAM, câmera dupla 13MP, bateria 4000mAh. Sistema Android atualizado.",
			Category:    "Eletrônicos",
			PriceMZN:    5000,
			PriceUSD:    "78.13",
			Stock:       50,
			Images:      []string{"https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600"},
			Specifications: map[string]string{
				"Tela":          "6.5 polegadas",
				"RAM":           "4GB",
				"Armazenamento": "64GB",
				"Câmera":        "13MP dupla",
				"Bateria":       "4000mAh",
			},
			Status: "active",
		},
		{
			Name:        "Cimento Portland 50kg",
			Description: "Cimento Portland CP-II 50kg, ideal para concreto e argamassa de alta resistência. Qualidade garantida.",
			Category:    "Construção",
			PriceMZN:    800,
			PriceUSD:    "12.50",
			Stock:       15,
			Images:      []string{"https://images.unsplash.com/photo-1605732562742-3023a888e56e?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600"},
			Specifications: map[string]string{
				"Peso":   "50kg",
				"Tipo":   "CP-II",
				"Uso":    "Concreto e argamassa",
				"Origem": "China",
			},
			Status: "active",
		},
	}

	for _, p := range products {
		if _, err := mem.CreateProduct(ctx, p); err != nil {
			logger.Error("failed to seed product", "name", p.Name, "error", err)
		}
	}
}
