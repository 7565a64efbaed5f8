package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type txProbe struct {
	ID   int
	Note string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&txProbe{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}

	if err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&txProbe{Note: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&txProbe{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&txProbe{Note: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}

	var count int64
	if err := db.Model(&txProbe{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to leave 0 records, got %d", count)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not report a violation")
	}
	if !IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "users_email_key"`), "users_email_key") {
		t.Fatal("postgres duplicate key not detected")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: orders.payment_id"), "") {
		t.Fatal("sqlite unique failure not detected")
	}
	if IsUniqueViolation(errors.New("connection refused"), "users_email_key") {
		t.Fatal("unrelated error reported as violation")
	}
}
