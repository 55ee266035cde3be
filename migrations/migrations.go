package migrations

import (
	"database/sql"
	"time"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS cards (
		id VARCHAR(32) PRIMARY KEY,
		sport VARCHAR(20) NOT NULL,
		title VARCHAR(255) NOT NULL,
		player VARCHAR(255) NOT NULL,
		price_cents BIGINT NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		image VARCHAR(512),
		image2 VARCHAR(512),
		great_deal BOOLEAN NOT NULL DEFAULT FALSE,
		CHECK (stock >= 0)
	);`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		user_id VARCHAR(36) NOT NULL,
		card_id VARCHAR(32) NOT NULL,
		qty INT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, card_id)
	);`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id VARCHAR(36) NOT NULL,
		card_id VARCHAR(32) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, card_id)
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		status VARCHAR(20) NOT NULL,
		currency VARCHAR(8) NOT NULL,
		total_cents BIGINT NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		phone VARCHAR(64) NOT NULL,
		address1 VARCHAR(255) NOT NULL,
		address2 VARCHAR(255),
		city VARCHAR(128) NOT NULL,
		state VARCHAR(128) NOT NULL,
		zip VARCHAR(32) NOT NULL,
		country VARCHAR(2) NOT NULL,
		mp_preference_id VARCHAR(128),
		mp_payment_id VARCHAR(128),
		mp_merchant_order_id VARCHAR(128),
		paypal_order_id VARCHAR(128),
		paypal_capture_id VARCHAR(128),
		paypal_payer_email VARCHAR(255),
		tracking_carrier VARCHAR(128),
		tracking_code VARCHAR(128),
		tracking_url VARCHAR(512),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		paid_at TIMESTAMP NULL,
		shipped_at TIMESTAMP NULL,
		delivered_at TIMESTAMP NULL,
		INDEX idx_orders_user (user_id),
		INDEX idx_orders_status (status)
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id VARCHAR(36) NOT NULL,
		card_id VARCHAR(32) NOT NULL,
		title VARCHAR(255) NOT NULL,
		unit_cents BIGINT NOT NULL,
		qty INT NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS posts (
		id VARCHAR(36) PRIMARY KEY,
		slug VARCHAR(255) NOT NULL UNIQUE,
		title VARCHAR(255) NOT NULL,
		excerpt TEXT,
		cover_image VARCHAR(512),
		content_html MEDIUMTEXT NOT NULL,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		published_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);`,
}

// AutoMigrate creates every table the storefront needs if it does not exist.
func AutoMigrate(retries int, db *sql.DB) error {
	for _, query := range tables {
		_, err := db.Exec(query)
		if err != nil {
			// Retry creating the table
			for i := 0; i < retries; i++ {
				time.Sleep(1 * time.Second)
				_, err = db.Exec(query)
				if err == nil {
					break
				}
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
