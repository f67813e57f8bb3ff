package model

import "time"

// InterviewExport is the top-level JSON structure for archived interview export.
type InterviewExport struct {
	ExportedAt time.Time         `json:"exported_at"`
	Archive    ArchiveInfo       `json:"archive"`
	Count      int               `json:"count"`
	Interviews []InterviewRecord `json:"interviews"`
}

// InterviewRecord is one finished interview as stored in the archive.
type InterviewRecord struct {
	SessionID  string          `json:"session_id"`
	TargetRole string          `json:"target_role"`
	Level      ExperienceLevel `json:"experience_level"`
	Status     SessionState    `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Score      float64         `json:"score"`
	Rounds     []RoundResult   `json:"rounds"`
	Feedback   *Feedback       `json:"feedback,omitempty"`
}

// ArchiveInfo is the grading setup recorded alongside archived interviews.
type ArchiveInfo struct {
	LLMModel      string `json:"llm_model"`
	PromptVariant string `json:"prompt_variant"`
	Language      string `json:"language"`
}
