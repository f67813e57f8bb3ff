// Package store archives finished interviews in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pavelanni/interviewer/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS interviews (
		session_id TEXT PRIMARY KEY,
		target_role TEXT NOT NULL,
		level TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		score REAL NOT NULL DEFAULT 0,
		feedback TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS rounds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		score REAL NOT NULL,
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		time_spent REAL NOT NULL DEFAULT 0,
		passed INTEGER NOT NULL,
		UNIQUE (session_id, round),
		FOREIGN KEY (session_id) REFERENCES interviews(session_id)
	);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		position INTEGER NOT NULL,
		question_id TEXT NOT NULL,
		type TEXT NOT NULL,
		topic TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		prompt TEXT NOT NULL,
		options TEXT NOT NULL DEFAULT '[]',
		reference TEXT NOT NULL DEFAULT '',
		user_answer TEXT,
		is_correct INTEGER,
		time_spent REAL NOT NULL DEFAULT 0,
		fallback INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (session_id) REFERENCES interviews(session_id)
	);

	CREATE INDEX IF NOT EXISTS idx_answers_session_round ON answers (session_id, round, position);

	CREATE TABLE IF NOT EXISTS archive_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Archive stores a failed or completed session with its feedback.
// Archiving the same session again replaces the earlier record.
func (s *Store) Archive(ctx context.Context, sess *model.Session, fb model.Feedback) error {
	if !sess.Complete {
		return fmt.Errorf("archive session %s: not finished", sess.ID)
	}
	feedback, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM answers WHERE session_id = ?`,
		`DELETE FROM rounds WHERE session_id = ?`,
		`DELETE FROM interviews WHERE session_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, sess.ID); err != nil {
			return fmt.Errorf("clear session %s: %w", sess.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO interviews (session_id, target_role, level, status, started_at, finished_at, score, feedback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.TargetRole, sess.Level, sess.State(), sess.StartedAt.UTC(), sess.LastActive.UTC(), fb.Score, string(feedback),
	)
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}

	for _, r := range sess.Rounds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rounds (session_id, round, score, total_questions, correct_answers, time_spent, passed)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, r.Round, r.Score, r.Total, r.Correct, r.TimeSpent, r.Passed,
		); err != nil {
			return fmt.Errorf("insert round %d: %w", r.Round, err)
		}
		for i, q := range r.Questions {
			if err := insertAnswer(ctx, tx, sess.ID, r.Round, i, q); err != nil {
				return fmt.Errorf("insert answer %s: %w", q.ID, err)
			}
		}
	}
	return tx.Commit()
}

func insertAnswer(ctx context.Context, tx *sql.Tx, sessionID string, round, position int, q model.Question) error {
	options, err := json.Marshal(q.Options())
	if err != nil {
		return err
	}
	var userAnswer sql.NullString
	if q.Answered {
		userAnswer = sql.NullString{String: q.UserAnswer, Valid: true}
	}
	var correct sql.NullBool
	if q.Correct != nil {
		correct = sql.NullBool{Bool: *q.Correct, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO answers (session_id, round, position, question_id, type, topic, difficulty, prompt,
		 options, reference, user_answer, is_correct, time_spent, fallback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, round, position, q.ID, q.Type(), q.Topic, q.Difficulty, q.Prompt,
		string(options), q.Reference, userAnswer, correct, q.TimeSpent, q.Fallback,
	)
	return err
}

// ListInterviews returns archived interviews ordered by finish time.
// An empty status returns every interview.
func (s *Store) ListInterviews(ctx context.Context, status model.SessionState) ([]model.InterviewRecord, error) {
	query := `SELECT session_id, target_role, level, status, started_at, finished_at, score, feedback
		FROM interviews`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY finished_at, session_id`

	records, err := s.scanInterviews(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i := range records {
		rounds, err := s.listRounds(ctx, records[i].SessionID)
		if err != nil {
			return nil, fmt.Errorf("rounds for %s: %w", records[i].SessionID, err)
		}
		records[i].Rounds = rounds
	}
	return records, nil
}

// GetInterview returns one archived interview, or sql.ErrNoRows.
func (s *Store) GetInterview(ctx context.Context, sessionID string) (*model.InterviewRecord, error) {
	records, err := s.scanInterviews(ctx,
		`SELECT session_id, target_role, level, status, started_at, finished_at, score, feedback
		 FROM interviews WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, sql.ErrNoRows
	}
	rec := records[0]
	if rec.Rounds, err = s.listRounds(ctx, sessionID); err != nil {
		return nil, err
	}
	return &rec, nil
}

// scanInterviews reads interview rows fully before returning so the single
// connection is free for follow-up queries.
func (s *Store) scanInterviews(ctx context.Context, query string, args ...any) ([]model.InterviewRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.InterviewRecord
	for rows.Next() {
		var rec model.InterviewRecord
		var feedback string
		if err := rows.Scan(&rec.SessionID, &rec.TargetRole, &rec.Level, &rec.Status,
			&rec.StartedAt, &rec.FinishedAt, &rec.Score, &feedback); err != nil {
			return nil, err
		}
		var fb model.Feedback
		if err := json.Unmarshal([]byte(feedback), &fb); err != nil {
			return nil, fmt.Errorf("decode feedback for %s: %w", rec.SessionID, err)
		}
		rec.Feedback = &fb
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) listRounds(ctx context.Context, sessionID string) ([]model.RoundResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT round, score, total_questions, correct_answers, time_spent, passed
		 FROM rounds WHERE session_id = ? ORDER BY round`, sessionID)
	if err != nil {
		return nil, err
	}
	var rounds []model.RoundResult
	for rows.Next() {
		var r model.RoundResult
		if err := rows.Scan(&r.Round, &r.Score, &r.Total, &r.Correct, &r.TimeSpent, &r.Passed); err != nil {
			rows.Close()
			return nil, err
		}
		rounds = append(rounds, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rounds {
		qs, err := s.listAnswers(ctx, sessionID, rounds[i].Round)
		if err != nil {
			return nil, fmt.Errorf("answers for round %d: %w", rounds[i].Round, err)
		}
		rounds[i].Questions = qs
	}
	return rounds, nil
}

func (s *Store) listAnswers(ctx context.Context, sessionID string, round int) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, type, topic, difficulty, prompt, options, reference,
		 user_answer, is_correct, time_spent, fallback
		 FROM answers WHERE session_id = ? AND round = ? ORDER BY position`, sessionID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Question
	for rows.Next() {
		var (
			q          model.Question
			qtype      string
			options    string
			userAnswer sql.NullString
			correct    sql.NullBool
		)
		if err := rows.Scan(&q.ID, &qtype, &q.Topic, &q.Difficulty, &q.Prompt, &options, &q.Reference,
			&userAnswer, &correct, &q.TimeSpent, &q.Fallback); err != nil {
			return nil, err
		}
		var opts []string
		if err := json.Unmarshal([]byte(options), &opts); err != nil {
			return nil, fmt.Errorf("decode options for %s: %w", q.ID, err)
		}
		if q.Variant, err = model.NewVariant(model.QuestionType(qtype), opts); err != nil {
			return nil, err
		}
		q.Round = round
		if userAnswer.Valid {
			q.UserAnswer = userAnswer.String
			q.Answered = true
		}
		if correct.Valid {
			v := correct.Bool
			q.Correct = &v
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// CountInterviews returns the number of archived interviews per status.
func (s *Store) CountInterviews(ctx context.Context) (map[model.SessionState]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM interviews GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[model.SessionState]int)
	for rows.Next() {
		var status model.SessionState
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
