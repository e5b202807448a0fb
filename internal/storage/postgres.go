package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/xaenox/sms-sentinel/internal/models"
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

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

const messageColumns = `id, sender, body, ts, thread_id, type, read, seen, status, service_center,
	language, features_json, otp_verdict, otp_intent, phishing_verdict, phish_score, reasons_json, reviewed, version`

func (s *PostgresStorage) CreateMessage(ctx context.Context, msg *models.Message) error {
	featuresJSON, reasonsJSON, err := encodeDerived(msg)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO messages (sender, body, ts, thread_id, type, read, seen, status, service_center,
			language, features_json, otp_verdict, otp_intent, phishing_verdict, phish_score, reasons_json, reviewed, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`

	err = s.db.QueryRowContext(ctx, query,
		msg.Sender, msg.Body, msg.Timestamp, msg.ThreadID, msg.Type, msg.Read, msg.Seen,
		nullInt(msg.Status), nullStr(msg.ServiceCenter), nullStr(msg.Language), featuresJSON,
		verdictStr(msg.OTPVerdict), nullStr(string(msg.OTPIntent)), verdictStr(msg.PhishingVerdict),
		nullFloat(msg.PhishingScore), reasonsJSON, msg.Reviewed, msg.Version,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("error creating message: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	msg, err := scanMessage(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying message: %v", err)
	}
	return msg, nil
}

func (s *PostgresStorage) LoadPending(ctx context.Context, version int) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE version < $1 OR otp_verdict = 'unknown' OR phishing_verdict = 'unknown' OR phish_score IS NULL
		ORDER BY ts DESC`

	rows, err := s.db.QueryContext(ctx, query, version)
	if err != nil {
		return nil, fmt.Errorf("error querying pending messages: %v", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (s *PostgresStorage) Save(ctx context.Context, msg *models.Message) error {
	featuresJSON, reasonsJSON, err := encodeDerived(msg)
	if err != nil {
		return err
	}

	query := `
		UPDATE messages
		SET sender = $2, body = $3, ts = $4, thread_id = $5, type = $6, read = $7, seen = $8,
			status = $9, service_center = $10, language = $11, features_json = $12,
			otp_verdict = $13, otp_intent = $14, phishing_verdict = $15, phish_score = $16,
			reasons_json = $17, reviewed = $18, version = $19
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.Sender, msg.Body, msg.Timestamp, msg.ThreadID, msg.Type, msg.Read, msg.Seen,
		nullInt(msg.Status), nullStr(msg.ServiceCenter), nullStr(msg.Language), featuresJSON,
		verdictStr(msg.OTPVerdict), nullStr(string(msg.OTPIntent)), verdictStr(msg.PhishingVerdict),
		nullFloat(msg.PhishingScore), reasonsJSON, msg.Reviewed, msg.Version,
	)
	if err != nil {
		return fmt.Errorf("error saving message: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) MarkReviewed(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `UPDATE messages SET reviewed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error marking message reviewed: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) AppendFeedback(ctx context.Context, rec *models.FeedbackRecord) error {
	correctedJSON, err := json.Marshal(rec.Corrected)
	if err != nil {
		return fmt.Errorf("error encoding correction: %v", err)
	}

	query := `
		INSERT INTO feedback (id, message_id, original_otp, original_intent, original_phishing, original_score, corrected_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.MessageID, verdictStr(rec.Original.OTPVerdict), nullStr(string(rec.Original.OTPIntent)),
		verdictStr(rec.Original.PhishingVerdict), nullFloat(rec.Original.PhishingScore),
		string(correctedJSON), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error appending feedback: %v", err)
	}

	return nil
}

func (s *PostgresStorage) AppendMisclassification(ctx context.Context, entry *models.MisclassificationLogEntry) error {
	query := `
		INSERT INTO misclassification_logs (id, message_id, sender, body, predicted_otp, predicted_intent, predicted_phishing, created_at, user_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.MessageID, entry.Sender, entry.Body, verdictStr(entry.PredictedOTP),
		nullStr(string(entry.PredictedOTPIntent)), verdictStr(entry.PredictedPhishing),
		entry.CreatedAt, nullStr(entry.Note),
	)
	if err != nil {
		return fmt.Errorf("error appending misclassification log: %v", err)
	}

	return nil
}

func (s *PostgresStorage) ListMisclassifications(ctx context.Context) ([]*models.MisclassificationLogEntry, error) {
	query := `
		SELECT id, message_id, sender, body, predicted_otp, predicted_intent, predicted_phishing, created_at, user_note
		FROM misclassification_logs
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying misclassification logs: %v", err)
	}
	defer rows.Close()

	var entries []*models.MisclassificationLogEntry
	for rows.Next() {
		entry := &models.MisclassificationLogEntry{}
		var otp, phishing string
		var intent, note sql.NullString
		err := rows.Scan(&entry.ID, &entry.MessageID, &entry.Sender, &entry.Body,
			&otp, &intent, &phishing, &entry.CreatedAt, &note)
		if err != nil {
			return nil, fmt.Errorf("error scanning misclassification log: %v", err)
		}
		entry.PredictedOTP = models.ParseVerdict(otp)
		entry.PredictedOTPIntent = models.OTPIntent(intent.String)
		entry.PredictedPhishing = models.ParseVerdict(phishing)
		entry.Note = note.String
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (s *PostgresStorage) ClearMisclassifications(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM misclassification_logs`); err != nil {
		return fmt.Errorf("error clearing misclassification logs: %v", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	msg := &models.Message{}
	var status sql.NullInt64
	var serviceCenter, language, featuresJSON, intent, reasonsJSON sql.NullString
	var otp, phishing string
	var score sql.NullFloat64

	err := row.Scan(&msg.ID, &msg.Sender, &msg.Body, &msg.Timestamp, &msg.ThreadID,
		&msg.Type, &msg.Read, &msg.Seen, &status, &serviceCenter, &language, &featuresJSON,
		&otp, &intent, &phishing, &score, &reasonsJSON, &msg.Reviewed, &msg.Version)
	if err != nil {
		return nil, err
	}

	if status.Valid {
		v := int(status.Int64)
		msg.Status = &v
	}
	msg.ServiceCenter = serviceCenter.String
	msg.Language = language.String
	msg.OTPVerdict = models.ParseVerdict(otp)
	msg.OTPIntent = models.OTPIntent(intent.String)
	msg.PhishingVerdict = models.ParseVerdict(phishing)
	if score.Valid {
		f := score.Float64
		msg.PhishingScore = &f
	}

	if featuresJSON.Valid && featuresJSON.String != "" {
		fs := &models.FeatureSet{}
		if err := json.Unmarshal([]byte(featuresJSON.String), fs); err != nil {
			return nil, fmt.Errorf("error decoding features: %v", err)
		}
		msg.Features = fs
	}
	if reasonsJSON.Valid && reasonsJSON.String != "" {
		if err := json.Unmarshal([]byte(reasonsJSON.String), &msg.PhishingReasons); err != nil {
			return nil, fmt.Errorf("error decoding reasons: %v", err)
		}
	}

	return msg, nil
}

func encodeDerived(msg *models.Message) (features, reasons sql.NullString, err error) {
	if msg.Features != nil {
		data, merr := json.Marshal(msg.Features)
		if merr != nil {
			return features, reasons, fmt.Errorf("error encoding features: %v", merr)
		}
		features = sql.NullString{String: string(data), Valid: true}
	}
	if msg.PhishingReasons != nil {
		data, merr := json.Marshal(msg.PhishingReasons)
		if merr != nil {
			return features, reasons, fmt.Errorf("error encoding reasons: %v", merr)
		}
		reasons = sql.NullString{String: string(data), Valid: true}
	}
	return features, reasons, nil
}

// verdictStr normalizes a verdict for storage. The zero value and any legacy
// junk collapse to 'unknown', matching the column default that the pending
// query filters on.
func verdictStr(v models.Verdict) string {
	return string(models.ParseVerdict(string(v)))
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
