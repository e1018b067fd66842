package main

import (
	"log"
	"time"

	"github.com/haatbazar/internal/authz"
	"github.com/haatbazar/internal/config"
	"github.com/haatbazar/internal/logger"
	"github.com/haatbazar/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("Failed to bootstrap roles: %v", err)
	}

	// 添加标签（小写，父子层级）
	tags := []models.Tag{
		{Name: "electronics"},
		{Name: "groceries"},
		{Name: "fashion"},
		{Name: "home"},
	}
	for _, tag := range tags {
		var existing models.Tag
		if err := models.DB.Where("name = ?", tag.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&tag).Error; err != nil {
				stdLog.Printf("Failed to create tag %s: %v", tag.Name, err)
			} else {
				stdLog.Printf("Created tag: %s", tag.Name)
			}
		} else {
			stdLog.Printf("Tag already exists: %s", tag.Name)
		}
	}

	tagIDs := map[string]uint{}
	var tagList []models.Tag
	if err := models.DB.Where("name IN ?", []string{"electronics", "groceries", "fashion", "home"}).Find(&tagList).Error; err != nil {
		stdLog.Printf("Failed to load tags: %v", err)
	}
	for _, tag := range tagList {
		tagIDs[tag.Name] = tag.ID
	}

	// 子标签挂在父标签之下
	childTags := []models.Tag{
		{Name: "mobile", ParentID: ptrUint(tagIDs["electronics"])},
		{Name: "audio", ParentID: ptrUint(tagIDs["electronics"])},
		{Name: "rice", ParentID: ptrUint(tagIDs["groceries"])},
		{Name: "spices", ParentID: ptrUint(tagIDs["groceries"])},
		{Name: "saree", ParentID: ptrUint(tagIDs["fashion"])},
	}
	for _, tag := range childTags {
		var existing models.Tag
		if err := models.DB.Where("name = ?", tag.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&tag).Error; err != nil {
				stdLog.Printf("Failed to create tag %s: %v", tag.Name, err)
			} else {
				stdLog.Printf("Created tag: %s", tag.Name)
			}
			tagIDs[tag.Name] = tag.ID
		} else {
			tagIDs[tag.Name] = existing.ID
		}
	}

	// 添加商品
	products := []struct {
		product models.Product
		tags    []string
	}{
		{
			product: models.Product{
				Name:        "Walton Primo X10 Smartphone",
				Description: "6.5 inch display, 8GB RAM, 128GB storage, dual SIM.",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(18999)),
				Stock:       40,
				ImageURL:    "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=800",
			},
			tags: []string{"electronics", "mobile"},
		},
		{
			product: models.Product{
				Name:        "Wireless Bluetooth Earphones",
				Description: "Active noise cancellation with 24 hour battery life.",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(2499)),
				Stock:       120,
				ImageURL:    "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
			},
			tags: []string{"electronics", "audio"},
		},
		{
			product: models.Product{
				Name:        "Miniket Rice 25kg",
				Description: "Premium miniket rice, freshly milled.",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(1850)),
				Stock:       200,
				ImageURL:    "https://images.unsplash.com/photo-1586201375761-83865001e31c?w=800",
			},
			tags: []string{"groceries", "rice"},
		},
		{
			product: models.Product{
				Name:        "Turmeric Powder 500g",
				Description: "Pure ground turmeric, no additives.",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(220)),
				Stock:       300,
				ImageURL:    "https://images.unsplash.com/photo-1615485500704-8e990f9900f7?w=800",
			},
			tags: []string{"groceries", "spices"},
		},
		{
			product: models.Product{
				Name:        "Jamdani Saree",
				Description: "Handwoven Dhakai jamdani, cotton-silk blend.",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(5500)),
				Stock:       25,
				ImageURL:    "https://images.unsplash.com/photo-1610030469983-98e550d6193c?w=800",
			},
			tags: []string{"fashion", "saree"},
		},
		{
			product: models.Product{
				Name:        "Stainless Steel Cookware Set",
				Description: "7 piece set with tempered glass lids.",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(4200)),
				Stock:       60,
				ImageURL:    "https://images.unsplash.com/photo-1584990347449-39b4aaf277fb?w=800",
			},
			tags: []string{"home"},
		},
	}
	for _, entry := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", entry.product.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", entry.product.Name)
			continue
		}
		product := entry.product
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			continue
		}
		for _, name := range entry.tags {
			tagID, ok := tagIDs[name]
			if !ok {
				continue
			}
			link := models.ProductTag{ProductID: product.ID, TagID: tagID, CreatedAt: time.Now()}
			if err := models.DB.Create(&link).Error; err != nil {
				stdLog.Printf("Failed to link product %s to tag %s: %v", product.Name, name, err)
			}
		}
		stdLog.Printf("Created product: %s", product.Name)
	}

	// 添加各角色管理员账号
	adminAccounts := []struct {
		username string
		fullName string
		role     string
	}{
		{username: "product_admin", fullName: "Product Admin", role: "product"},
		{username: "sales_admin", fullName: "Sales Admin", role: "sales"},
	}
	for _, account := range adminAccounts {
		userID, created := seedUser(stdLog, account.username, account.username+"@haatbazar.local", account.fullName, "admin12345")
		if userID == 0 {
			continue
		}
		var existing models.Admin
		if err := models.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
			continue
		}
		admin := models.Admin{UserID: userID, Role: account.role}
		if err := models.DB.Create(&admin).Error; err != nil {
			stdLog.Printf("Failed to create admin %s: %v", account.username, err)
			continue
		}
		if err := authzService.SetAdminRole(admin.ID, admin.Role); err != nil {
			stdLog.Printf("Failed to grant role %s to admin %s: %v", admin.Role, account.username, err)
		}
		if created {
			stdLog.Printf("Created admin: %s (%s)", account.username, account.role)
		}
	}

	// 示例顾客（含地址和支付方式）
	customerUserID, _ := seedUser(stdLog, "rahim", "rahim@example.com", "Rahim Uddin", "customer123")
	if customerUserID != 0 {
		var customer models.Customer
		if err := models.DB.Where("user_id = ?", customerUserID).First(&customer).Error; err != nil {
			customer = models.Customer{UserID: customerUserID, Phone: "01711000001"}
			if err := models.DB.Create(&customer).Error; err != nil {
				stdLog.Printf("Failed to create customer: %v", err)
			} else {
				stdLog.Printf("Created customer: rahim")
			}
		}
		if customer.ID != 0 {
			var addressCount int64
			models.DB.Model(&models.Address{}).Where("customer_id = ?", customer.ID).Count(&addressCount)
			if addressCount == 0 {
				address := models.Address{
					CustomerID: customer.ID,
					Line1:      "House 12, Road 5, Dhanmondi",
					City:       "Dhaka",
					Division:   "Dhaka",
					PostalCode: "1205",
					Country:    "Bangladesh",
					IsDefault:  true,
				}
				if err := models.DB.Create(&address).Error; err != nil {
					stdLog.Printf("Failed to create address: %v", err)
				}
			}
			var methodCount int64
			models.DB.Model(&models.PaymentMethod{}).Where("customer_id = ?", customer.ID).Count(&methodCount)
			if methodCount == 0 {
				method := models.PaymentMethod{
					CustomerID: customer.ID,
					Type:       "mobile_banking",
					AccountNo:  "017****0001",
					IsDefault:  true,
				}
				if err := models.DB.Create(&method).Error; err != nil {
					stdLog.Printf("Failed to create payment method: %v", err)
				}
			}
		}
	}

	// 示例骑手
	riderAccounts := []struct {
		username string
		fullName string
		phone    string
		vehicle  string
	}{
		{username: "karim_rider", fullName: "Karim Mia", phone: "01811000001", vehicle: "Motorcycle - Dhaka Metro HA 11-2233"},
		{username: "selim_rider", fullName: "Selim Ahmed", phone: "01811000002", vehicle: "Bicycle"},
	}
	for _, account := range riderAccounts {
		userID, _ := seedUser(stdLog, account.username, account.username+"@haatbazar.local", account.fullName, "rider12345")
		if userID == 0 {
			continue
		}
		var existing models.Rider
		if err := models.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
			continue
		}
		rider := models.Rider{UserID: userID, Phone: account.phone, VehicleInfo: account.vehicle, IsActive: true}
		if err := models.DB.Create(&rider).Error; err != nil {
			stdLog.Printf("Failed to create rider %s: %v", account.username, err)
		} else {
			stdLog.Printf("Created rider: %s", account.username)
		}
	}

	// 优惠券
	now := time.Now()
	coupons := []models.Coupon{
		{
			Code:         "WELCOME100",
			Type:         "fixed",
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			MinAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
			UsageLimit:   500,
			PerUserLimit: 1,
			ValidFrom:    now,
			ValidTo:      now.AddDate(0, 3, 0),
			IsActive:     true,
		},
		{
			Code:         "EID15",
			Type:         "percent",
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			MinAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(2000)),
			MaxDiscount:  models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
			UsageLimit:   1000,
			PerUserLimit: 2,
			ValidFrom:    now,
			ValidTo:      now.AddDate(0, 1, 0),
			IsActive:     true,
		},
	}
	for _, coupon := range coupons {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err == nil {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
			continue
		}
		if err := models.DB.Create(&coupon).Error; err != nil {
			stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
		} else {
			stdLog.Printf("Created coupon: %s", coupon.Code)
		}
	}

	stdLog.Println("Seed completed")
}

// seedUser 创建账号（已存在则复用），返回账号ID和是否新建
func seedUser(stdLog *log.Logger, username, email, fullName, password string) (uint, bool) {
	var existing models.User
	if err := models.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		return existing.ID, false
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Printf("Failed to hash password for %s: %v", username, err)
		return 0, false
	}
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
	}
	if err := models.DB.Create(&user).Error; err != nil {
		stdLog.Printf("Failed to create user %s: %v", username, err)
		return 0, false
	}
	return user.ID, true
}

func ptrUint(v uint) *uint {
	if v == 0 {
		return nil
	}
	return &v
}
