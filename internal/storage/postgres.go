package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kakaalameda/telegram-rolebot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

// PostgresStorage is the database-backed turn store. The eviction cap is
// enforced on append, same as the in-memory backend.
type PostgresStorage struct {
	db  *sql.DB
	cap int
}

func NewPostgresStorage(config DatabaseConfig, cap int, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	logger.Info("Connected to PostgreSQL",
		zap.String("host", config.Host),
		zap.String("dbname", config.DBName))

	if cap < 2 {
		cap = 2
	}
	storage := &PostgresStorage{db: db, cap: cap}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) AppendTurn(ctx context.Context, conversation models.ConversationID, turn models.Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (chat_id, role, content) VALUES ($1, $2, $3)`,
		int64(conversation), turn.Role, turn.Content)
	if err != nil {
		return fmt.Errorf("error inserting turn: %w", err)
	}

	// FIFO eviction: drop everything older than the newest cap rows.
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM conversation_turns
		 WHERE chat_id = $1 AND id NOT IN (
		     SELECT id FROM conversation_turns
		     WHERE chat_id = $1 ORDER BY id DESC LIMIT $2)`,
		int64(conversation), s.cap)
	if err != nil {
		return fmt.Errorf("error evicting old turns: %w", err)
	}

	return nil
}

func (s *PostgresStorage) RecentTurns(ctx context.Context, conversation models.ConversationID) ([]models.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM (
		     SELECT id, role, content FROM conversation_turns
		     WHERE chat_id = $1 ORDER BY id DESC LIMIT $2
		 ) recent ORDER BY id ASC`,
		int64(conversation), s.cap-1)
	if err != nil {
		return nil, fmt.Errorf("error querying turns: %w", err)
	}
	defer rows.Close()

	var turns []models.Turn
	for rows.Next() {
		var t models.Turn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, fmt.Errorf("error scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading turns: %w", err)
	}

	return turns, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
