package db

import "database/sql"

// EnsureSchema creates the tables this service needs when they are missing.
// Statements are idempotent so startup can always run them.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS routes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			origin VARCHAR(100) NOT NULL,
			destination VARCHAR(100) NOT NULL,
			distance_km DOUBLE NOT NULL,
			duration_hours DOUBLE NOT NULL,
			operating_days VARCHAR(100) NOT NULL DEFAULT 'Monday,Tuesday,Wednesday,Thursday,Friday,Saturday,Sunday',
			base_price_cents BIGINT NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_routes_origin (origin),
			KEY idx_routes_active (is_active),
			CONSTRAINT chk_routes_endpoints CHECK (origin <> destination)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS buses (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			bus_number VARCHAR(20) NOT NULL,
			bus_type VARCHAR(20) NOT NULL DEFAULT 'standard',
			total_seats INT NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_bus_number (bus_number)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS schedules (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_id BIGINT NOT NULL,
			bus_id BIGINT NOT NULL,
			departure_time DATETIME NOT NULL,
			arrival_time DATETIME NOT NULL,
			available_seats INT NOT NULL,
			price_cents BIGINT NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_route_departure (route_id, departure_time),
			KEY idx_schedules_departure (departure_time),
			KEY idx_schedules_active_departure (is_active, departure_time),
			CONSTRAINT fk_schedules_route FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
			CONSTRAINT fk_schedules_bus FOREIGN KEY (bus_id) REFERENCES buses(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			booking_id CHAR(36) NOT NULL,
			booking_reference VARCHAR(15) NULL,
			schedule_id BIGINT NOT NULL,
			passenger_name VARCHAR(100) NOT NULL,
			passenger_email VARCHAR(254) NOT NULL,
			passenger_phone VARCHAR(20) NOT NULL,
			seat_count INT NOT NULL DEFAULT 1,
			original_cents BIGINT NOT NULL DEFAULT 0,
			discount_type VARCHAR(20) NOT NULL DEFAULT 'none',
			discount_cents BIGINT NOT NULL DEFAULT 0,
			total_cents BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'pending_payment',
			payment_id VARCHAR(200) NULL,
			gateway_status VARCHAR(50) NULL,
			payment_date DATETIME NULL,
			failure_reason TEXT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_booking_uuid (booking_id),
			UNIQUE KEY uniq_booking_reference (booking_reference),
			KEY idx_bookings_status (status),
			KEY idx_bookings_schedule_status (schedule_id, status),
			KEY idx_bookings_payment_id (payment_id),
			CONSTRAINT fk_bookings_schedule FOREIGN KEY (schedule_id) REFERENCES schedules(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(254) NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'staff',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_user_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	}

	for _, ddl := range stmts {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}
