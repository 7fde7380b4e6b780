// Package main 初始化数据库结构与首个管理员
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"canvas-ai-api/internal/config"
	"canvas-ai-api/internal/domain/entity"
)

// schema 建表语句，可重复执行
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               BIGSERIAL PRIMARY KEY,
		username         VARCHAR(64) NOT NULL UNIQUE,
		email            VARCHAR(255) NOT NULL UNIQUE,
		password_hash    VARCHAR(255) NOT NULL,
		role             VARCHAR(16) NOT NULL DEFAULT 'member',
		avatar_file_id   VARCHAR(255),
		credits          INT NOT NULL DEFAULT 10,
		credits_reset_at DATE NOT NULL DEFAULT CURRENT_DATE,
		last_login_at    TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS canvases (
		id          UUID PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name        VARCHAR(255) NOT NULL,
		description TEXT,
		thumbnail   TEXT,
		data        JSONB,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_canvases_user_id ON canvases(user_id)`,

	`CREATE TABLE IF NOT EXISTS canvas_elements (
		id         UUID PRIMARY KEY,
		canvas_id  UUID NOT NULL REFERENCES canvases(id) ON DELETE CASCADE,
		type       VARCHAR(16) NOT NULL,
		x          DOUBLE PRECISION NOT NULL DEFAULT 0,
		y          DOUBLE PRECISION NOT NULL DEFAULT 0,
		width      INT NOT NULL DEFAULT 0,
		height     INT NOT NULL DEFAULT 0,
		payload    JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_canvas_elements_canvas_id ON canvas_elements(canvas_id)`,

	`CREATE TABLE IF NOT EXISTS chat_sessions (
		id         UUID PRIMARY KEY,
		canvas_id  UUID NOT NULL REFERENCES canvases(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title      VARCHAR(255),
		model      VARCHAR(128),
		provider   VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_sessions_canvas_id ON chat_sessions(canvas_id)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_sessions_user_id ON chat_sessions(user_id)`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id         UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
		role       VARCHAR(16) NOT NULL,
		content    TEXT NOT NULL,
		metadata   JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id ON chat_messages(session_id)`,

	`CREATE TABLE IF NOT EXISTS canvas_artifacts (
		id         UUID PRIMARY KEY,
		canvas_id  UUID NOT NULL REFERENCES canvases(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		file_id    VARCHAR(255) NOT NULL UNIQUE,
		file_path  VARCHAR(512) NOT NULL,
		mime_type  VARCHAR(64) NOT NULL,
		width      INT NOT NULL DEFAULT 0,
		height     INT NOT NULL DEFAULT 0,
		provider   VARCHAR(64),
		model      VARCHAR(128),
		prompt     TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_canvas_artifacts_canvas_id ON canvas_artifacts(canvas_id)`,
}

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pg := cfg.Database.Postgres
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, pg.Password, pg.Database, pg.SSLMode)

	// 2. 连接数据库
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	// 3. 建表
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
	}
	fmt.Println("Schema applied.")

	// 4. 创建首个管理员
	adminEmail := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@canvas-ai.local"
	}
	adminPassword := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123" // 生产环境请务必通过环境变量设置
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	dailyCredits := cfg.ImageGen.DailyCredits
	if dailyCredits <= 0 {
		dailyCredits = entity.DefaultDailyCredits
	}

	result, err := db.Exec(`
		INSERT INTO users (username, email, password_hash, role, credits, credits_reset_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_DATE)
		ON CONFLICT (email) DO NOTHING`,
		"admin", adminEmail, string(hash), string(entity.UserRoleAdmin), dailyCredits)
	if err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		fmt.Printf("Admin user %s created.\n", adminEmail)
	} else {
		fmt.Printf("Admin user %s already exists.\n", adminEmail)
	}

	fmt.Println("Bootstrap completed successfully.")
}
