package main

import (
	"context"
	"flag"
	"log"

	"delivery-service/internal/auth"
	"delivery-service/internal/config"
	"delivery-service/internal/domain"
	mmysql "delivery-service/internal/infra/mysql"
	"delivery-service/internal/repository"
	mysqlrepo "delivery-service/internal/repository/mysql"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name, description, price, imageURL string
	stock                              int
}

var menu = []seedProduct{
	{"Hamburguesa Doble Queso", "Doble carne, doble queso cheddar, cebolla y salsa especial.", "9.50", "https://images.unsplash.com/photo-1568901346375-23c9450c58cd?auto=format&fit=crop&w=500&q=60", 50},
	{"Hamburguesa BBQ Bacon", "Carne de res a la parrilla, tocino crujiente, queso cheddar y salsa BBQ ahumada.", "10.50", "https://images.unsplash.com/photo-1594212699903-ec8a3eca50f5?auto=format&fit=crop&w=500&q=60", 35},
	{"Pizza Pepperoni Familiar", "Masa grande, extra queso y mucho pepperoni.", "18.00", "https://images.unsplash.com/photo-1628840042765-356cda07504e?auto=format&fit=crop&w=500&q=60", 30},
	{"Pizza Hawaiana", "Jamón, piña y queso mozzarella.", "16.50", "https://images.unsplash.com/photo-1565299624946-b28f40a0ae38?auto=format&fit=crop&w=500&q=60", 30},
	{"Coca-Cola 1.5L", "Refresco sabor cola.", "2.50", "https://images.unsplash.com/photo-1622483767028-3f66f32aef97?auto=format&fit=crop&w=500&q=60", 100},
	{"Limonada Natural", "Limonada fresca con menta y hielo.", "3.00", "https://images.unsplash.com/photo-1513558161293-cdaf765ed2fd?auto=format&fit=crop&w=500&q=60", 50},
	{"Cheesecake de Fresa", "Pastel de queso cremoso con salsa de fresa.", "5.00", "https://images.unsplash.com/photo-1533134242443-d4fd215305ad?auto=format&fit=crop&w=500&q=60", 20},
	{"Brownie con Helado", "Brownie de chocolate caliente con una bola de helado de vainilla.", "6.00", "https://images.unsplash.com/photo-1564355808539-22fda35bed7e?auto=format&fit=crop&w=500&q=60", 25},
	{"Tacos al Pastor (Orden de 5)", "Tortillas de maíz con carne de cerdo adobada, piña, cilantro y cebolla.", "12.00", "https://images.unsplash.com/photo-1551504734-5ee1c4a1479b?auto=format&fit=crop&w=500&q=60", 60},
}

func main() {
	adminEmail := flag.String("admin-email", "admin@demo.com", "email of the admin account")
	adminPassword := flag.String("admin-password", "", "password of the admin account (admin is skipped when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := mmysql.NewMySQL(cfg.MySQL)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	ctx := context.Background()
	users := mysqlrepo.NewUserRepository(db)
	products := mysqlrepo.NewProductRepository(db)

	if err := ensureUser(ctx, users, "Cliente Demo", "cliente@demo.com", "123456", domain.RoleUser); err != nil {
		log.Fatalf("seed customer: %v", err)
	}
	if *adminPassword != "" {
		if err := ensureUser(ctx, users, "Administrador", *adminEmail, *adminPassword, domain.RoleAdmin); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	existing, err := products.FindAll(ctx)
	if err != nil {
		log.Fatalf("list products: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Catalog already has %d products, skipping menu", len(existing))
		return
	}

	for _, m := range menu {
		p := &domain.Product{
			Name:        m.name,
			Description: m.description,
			Price:       decimal.RequireFromString(m.price),
			ImageURL:    m.imageURL,
			Stock:       m.stock,
		}
		if err := products.Create(ctx, p); err != nil {
			log.Fatalf("create product %q: %v", m.name, err)
		}
	}
	log.Printf("Database seeded with %d products", len(menu))
}

func ensureUser(ctx context.Context, users repository.UserRepository, name, email, password string, role domain.Role) error {
	u, err := users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u != nil {
		log.Printf("User %s already exists", email)
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := users.Create(ctx, &domain.User{Email: email, Name: name, PasswordHash: hash, Role: role}); err != nil {
		return err
	}
	log.Printf("User created: %s (%s)", email, role)
	return nil
}
