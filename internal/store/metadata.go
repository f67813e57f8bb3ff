package store

import (
	"database/sql"

	"github.com/pavelanni/interviewer/internal/model"
)

// SetMetadata upserts a key-value pair in the archive_metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO archive_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM archive_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetArchiveInfo records the grading setup interviews are being archived under.
func (s *Store) SetArchiveInfo(info model.ArchiveInfo) error {
	pairs := []struct{ k, v string }{
		{"llm_model", info.LLMModel},
		{"prompt_variant", info.PromptVariant},
		{"language", info.Language},
	}
	for _, p := range pairs {
		if err := s.SetMetadata(p.k, p.v); err != nil {
			return err
		}
	}
	return nil
}

// GetArchiveInfo reads the grading setup from metadata.
func (s *Store) GetArchiveInfo() (model.ArchiveInfo, error) {
	var info model.ArchiveInfo
	var err error

	if info.LLMModel, err = s.GetMetadata("llm_model"); err != nil {
		return info, err
	}
	if info.PromptVariant, err = s.GetMetadata("prompt_variant"); err != nil {
		return info, err
	}
	if info.Language, err = s.GetMetadata("language"); err != nil {
		return info, err
	}
	return info, nil
}
