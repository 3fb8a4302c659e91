package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPasswordRoundTrip(t *testing.T) {
	var user User
	if err := user.SetPassword("Sup3r$ecret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if user.Password == "Sup3r$ecret" {
		t.Fatal("password stored in plain text")
	}
	if err := user.CheckPassword("Sup3r$ecret"); err != nil {
		t.Errorf("CheckPassword with correct password: %v", err)
	}
	if err := user.CheckPassword("wrong"); err == nil {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func userTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestBeforeSaveAdminFlags(t *testing.T) {
	db := userTestDB(t)

	admin := User{Username: "admin", Email: "admin@example.com", Password: "x", Role: RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	var saved User
	db.First(&saved, admin.ID)
	if !saved.IsStaff || !saved.IsSuperuser {
		t.Errorf("admin must be staff and superuser, got staff=%v superuser=%v", saved.IsStaff, saved.IsSuperuser)
	}

	// The flags are reasserted on every write, not just creation.
	db.Model(&saved).Updates(map[string]interface{}{"is_staff": false, "is_superuser": false})
	saved.IsStaff = false
	saved.IsSuperuser = false
	if err := db.Save(&saved).Error; err != nil {
		t.Fatalf("resave admin: %v", err)
	}
	db.First(&saved, admin.ID)
	if !saved.IsStaff || !saved.IsSuperuser {
		t.Error("admin flags must be restored on save")
	}
}

func TestBeforeSaveRejectsUnknownRole(t *testing.T) {
	db := userTestDB(t)

	bad := User{Username: "x", Email: "x@example.com", Password: "x", Role: "superdoctor"}
	if err := db.Create(&bad).Error; err == nil {
		t.Fatal("expected error for unknown role")
	}
	var count int64
	db.Model(&User{}).Count(&count)
	if count != 0 {
		t.Fatalf("no user should persist, got %d", count)
	}
}
