// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/your-org/bookstore-backend/internal/domain/affiliate"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// User domain - Base tables
		&user.User{},
		&user.Profile{},
		&user.Address{},

		// Catalog domain
		&book.Category{},
		&book.Genre{},
		&book.Book{},
		&book.InventoryAdjustment{},

		// Cart domain
		&cart.CartItem{},

		// Order domain - Dependent tables
		&order.ShippingMethod{},
		&order.Order{},
		&order.OrderItem{},
		&order.StatusHistory{},
		&order.ReturnRequest{},
		&order.ReturnItem{},

		// Review domain
		&review.Review{},
		&review.Vote{},
		&review.Report{},

		// Affiliate domain
		&affiliate.Affiliate{},
		&affiliate.ReferralLink{},
		&affiliate.Referral{},
		&affiliate.Commission{},
		&affiliate.Payout{},

		// Analytics domain
		&analytics.DailySales{},
		&analytics.BookPerformance{},
		&analytics.InventoryAlert{},
		&analytics.SalesReport{},
	}

	// Run auto-migration for each model
	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_active ON users(role, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Book indexes
		"CREATE INDEX IF NOT EXISTS idx_books_category_published ON books(category_id, is_published)",
		"CREATE INDEX IF NOT EXISTS idx_books_seller_published ON books(seller_id, is_published)",
		"CREATE INDEX IF NOT EXISTS idx_books_featured ON books(is_featured, is_published)",
		"CREATE INDEX IF NOT EXISTS idx_books_price ON books(price)",
		"CREATE INDEX IF NOT EXISTS idx_books_rating ON books(average_rating DESC)",
		"CREATE INDEX IF NOT EXISTS idx_books_created_at ON books(created_at DESC)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Order indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_book ON order_items(book_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_seller ON order_items(seller_id)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		// Return request indexes
		"CREATE INDEX IF NOT EXISTS idx_return_requests_status ON return_requests(status, created_at)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_type ON addresses(user_id, type)",
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_reviews_book_approved ON reviews(book_id, is_approved)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_helpful_count ON reviews(helpful_count DESC)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_review_reports_unresolved ON review_reports(is_resolved, created_at)",

		// Affiliate indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_affiliates_referral_code ON affiliates(referral_code)",
		"CREATE INDEX IF NOT EXISTS idx_referrals_visitor ON referrals(visitor_id)",
		"CREATE INDEX IF NOT EXISTS idx_referrals_affiliate_created ON referrals(affiliate_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_commissions_affiliate_status ON affiliate_commissions(affiliate_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_payouts_affiliate_status ON affiliate_payouts(affiliate_id, status)",

		// Analytics indexes
		"CREATE INDEX IF NOT EXISTS idx_daily_sales_date ON analytics_daily_sales(date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_book_performance_units ON analytics_book_performance(seller_id, units_sold DESC)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_alerts_open ON inventory_alerts(seller_id, is_resolved)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedGenres(); err != nil {
		return fmt.Errorf("failed to seed genres: %w", err)
	}

	if err := m.seedShippingMethods(); err != nil {
		return fmt.Errorf("failed to seed shipping methods: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedTestUsers(); err != nil {
		return fmt.Errorf("failed to seed test users: %w", err)
	}

	if err := m.seedTestBooks(); err != nil {
		return fmt.Errorf("failed to seed test books: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates the default catalog categories
func (m *Migration) seedCategories() error {
	log.Println("🏷️ Seeding categories...")

	categories := []book.Category{
		{
			Name:        "Fiction",
			Slug:        "fiction",
			Description: "Novels, short stories, and literary fiction",
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Non-Fiction",
			Slug:        "non-fiction",
			Description: "Biographies, history, and general non-fiction",
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Name:        "Science & Technology",
			Slug:        "science-technology",
			Description: "Science, engineering, and computing titles",
			SortOrder:   3,
			IsActive:    true,
		},
		{
			Name:        "Children",
			Slug:        "children",
			Description: "Picture books and early readers",
			SortOrder:   4,
			IsActive:    true,
		},
		{
			Name:        "Comics & Graphic Novels",
			Slug:        "comics-graphic-novels",
			Description: "Comics, manga, and graphic novels",
			SortOrder:   5,
			IsActive:    true,
		},
	}

	for _, category := range categories {
		var existing book.Category
		result := m.db.Where("slug = ?", category.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", category.Name)
		} else {
			log.Printf("⏭️ Category already exists: %s", category.Name)
		}
	}

	return nil
}

// seedGenres creates the default genre tags
func (m *Migration) seedGenres() error {
	log.Println("🏷️ Seeding genres...")

	genres := []book.Genre{
		{Name: "Mystery", Slug: "mystery"},
		{Name: "Science Fiction", Slug: "science-fiction"},
		{Name: "Fantasy", Slug: "fantasy"},
		{Name: "Romance", Slug: "romance"},
		{Name: "Thriller", Slug: "thriller"},
		{Name: "Biography", Slug: "biography"},
		{Name: "History", Slug: "history"},
		{Name: "Self-Help", Slug: "self-help"},
	}

	for _, genre := range genres {
		var existing book.Genre
		result := m.db.Where("slug = ?", genre.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&genre).Error; err != nil {
				return err
			}
			log.Printf("✅ Created genre: %s", genre.Name)
		} else {
			log.Printf("⏭️ Genre already exists: %s", genre.Name)
		}
	}

	return nil
}

// seedShippingMethods creates the default shipping options
func (m *Migration) seedShippingMethods() error {
	log.Println("🚚 Seeding shipping methods...")

	methods := []order.ShippingMethod{
		{
			Name:          "Standard Shipping",
			Description:   "Delivery within 5-7 business days",
			Price:         499,
			EstimatedDays: 7,
			IsActive:      true,
			SortOrder:     1,
		},
		{
			Name:          "Express Shipping",
			Description:   "Delivery within 2-3 business days",
			Price:         999,
			EstimatedDays: 3,
			IsActive:      true,
			SortOrder:     2,
		},
		{
			Name:          "Overnight Shipping",
			Description:   "Next business day delivery",
			Price:         1999,
			EstimatedDays: 1,
			IsActive:      true,
			SortOrder:     3,
		},
	}

	for _, method := range methods {
		var existing order.ShippingMethod
		result := m.db.Where("name = ?", method.Name).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&method).Error; err != nil {
				return err
			}
			log.Printf("✅ Created shipping method: %s", method.Name)
		} else {
			log.Printf("⏭️ Shipping method already exists: %s", method.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		adminUser := user.User{
			Email:     "admin@example.com",
			Password:  string(hashedPassword),
			FirstName: "Admin",
			LastName:  "User",
			Role:      user.RoleAdmin,
			IsActive:  true,
		}

		if err := m.db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("✅ Created admin user: admin@example.com (password: admin123)")
	} else {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
	}

	return nil
}

// seedTestUsers creates a buyer and a seller for development
func (m *Migration) seedTestUsers() error {
	log.Println("👤 Seeding test users...")

	testUsers := []struct {
		email     string
		password  string
		firstName string
		lastName  string
		role      string
		storeName string
	}{
		{"buyer@example.com", "buyer123", "Test", "Buyer", user.RoleBuyer, ""},
		{"seller@example.com", "seller123", "Test", "Seller", user.RoleSeller, "The Test Bookshop"},
	}

	for _, tu := range testUsers {
		var existing user.User
		result := m.db.Where("email = ?", tu.email).First(&existing)
		if result.Error == nil {
			log.Printf("⏭️ Test user already exists: %s", tu.email)
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(tu.password), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		testUser := user.User{
			Email:     tu.email,
			Password:  string(hashedPassword),
			FirstName: tu.firstName,
			LastName:  tu.lastName,
			Role:      tu.role,
			IsActive:  true,
			Profile: &user.Profile{
				StoreName: tu.storeName,
			},
		}

		if err := m.db.Create(&testUser).Error; err != nil {
			return err
		}

		log.Printf("✅ Created test user: %s (password: %s)", tu.email, tu.password)
	}

	return nil
}

// seedTestBooks creates sample listings for development
func (m *Migration) seedTestBooks() error {
	log.Println("📚 Seeding test books...")

	var bookCount int64
	m.db.Model(&book.Book{}).Count(&bookCount)
	if bookCount >= 3 {
		log.Println("⏭️ Test books already exist")
		return nil
	}

	var seller user.User
	if err := m.db.Where("email = ?", "seller@example.com").First(&seller).Error; err != nil {
		log.Println("⚠️ No seller found, skipping book seeding")
		return nil
	}

	pubDate := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	testBooks := []book.Book{
		{
			Title:           "The Midnight Library",
			Slug:            "the-midnight-library",
			ISBN:            "978-0-525-55948-1",
			Author:          "Matt Haig",
			Description:     "Between life and death there is a library, and within that library the shelves go on forever.",
			Price:           1599,
			StockQuantity:   25,
			Condition:       "new",
			Language:        "en",
			Format:          "paperback",
			Pages:           304,
			Publisher:       "Viking",
			PublicationDate: &pubDate,
			CategoryID:      1,
			SellerID:        seller.ID,
			IsPublished:     true,
			IsFeatured:      true,
		},
		{
			Title:           "Project Hail Mary",
			Slug:            "project-hail-mary",
			ISBN:            "978-0-593-13520-4",
			Author:          "Andy Weir",
			Description:     "A lone astronaut must save the earth from disaster in this irresistible interstellar adventure.",
			Price:           1899,
			StockQuantity:   18,
			Condition:       "new",
			Language:        "en",
			Format:          "hardcover",
			Pages:           496,
			Publisher:       "Ballantine Books",
			PublicationDate: &pubDate,
			CategoryID:      1,
			SellerID:        seller.ID,
			IsPublished:     true,
			IsFeatured:      true,
		},
		{
			Title:           "Designing Data-Intensive Applications",
			Slug:            "designing-data-intensive-applications",
			ISBN:            "978-1-4493-7332-0",
			Author:          "Martin Kleppmann",
			Description:     "The big ideas behind reliable, scalable, and maintainable systems.",
			Price:           4299,
			StockQuantity:   12,
			Condition:       "new",
			Language:        "en",
			Format:          "paperback",
			Pages:           616,
			Publisher:       "O'Reilly Media",
			PublicationDate: &pubDate,
			CategoryID:      3,
			SellerID:        seller.ID,
			IsPublished:     true,
			IsFeatured:      false,
		},
	}

	for _, b := range testBooks {
		var existing book.Book
		result := m.db.Where("slug = ?", b.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&b).Error; err != nil {
				log.Printf("⚠️ Failed to create test book %s: %v", b.Slug, err)
			} else {
				log.Printf("✅ Created test book: %s", b.Title)
			}
		} else {
			log.Printf("⏭️ Book already exists: %s", b.Title)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Define tables in reverse dependency order
	tables := []string{
		"sales_reports",
		"inventory_alerts",
		"analytics_book_performance",
		"analytics_daily_sales",
		"affiliate_payouts",
		"affiliate_commissions",
		"referrals",
		"referral_links",
		"affiliates",
		"review_reports",
		"review_votes",
		"reviews",
		"return_items",
		"return_requests",
		"order_status_history",
		"order_items",
		"orders",
		"shipping_methods",
		"cart_items",
		"inventory_adjustments",
		"book_genres",
		"books",
		"genres",
		"categories",
		"addresses",
		"user_profiles",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	// Get list of tables
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}

// CleanupTestData removes test data (useful for production setup)
func (m *Migration) CleanupTestData() error {
	log.Println("🧹 Cleaning up test data...")

	// Remove test books
	result := m.db.Where("seller_id IN (SELECT id FROM users WHERE email = ?)", "seller@example.com").
		Delete(&book.Book{})
	log.Printf("🗑️ Removed %d test books", result.RowsAffected)

	// Remove test users (keep admin)
	result = m.db.Where("email IN (?)", []string{"buyer@example.com", "seller@example.com"}).
		Delete(&user.User{})
	log.Printf("🗑️ Removed %d test users", result.RowsAffected)

	log.Println("✅ Test data cleanup completed")
	return nil
}
