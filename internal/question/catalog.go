package question

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pavelanni/interviewer/internal/model"
)

// GeneralTopic is used when a role/level has no configured topics.
const GeneralTopic = "General"

// Catalog maps role -> experience level -> topic list.
type Catalog map[string]map[model.ExperienceLevel][]string

// Topics returns the topics for role and level, or GeneralTopic alone.
func (c Catalog) Topics(role string, level model.ExperienceLevel) []string {
	if topics := c[role][level]; len(topics) > 0 {
		return topics
	}
	return []string{GeneralTopic}
}

// LoadCatalog reads a JSON catalog file and merges it over DefaultCatalog.
// Roles present in the file replace the built-in entry for that role.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var file Catalog
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	merged := make(Catalog, len(DefaultCatalog)+len(file))
	for role, levels := range DefaultCatalog {
		merged[role] = levels
	}
	for role, levels := range file {
		for level := range levels {
			if _, err := model.ParseExperienceLevel(string(level)); err != nil {
				return nil, fmt.Errorf("role %q: %w", role, err)
			}
		}
		merged[role] = levels
	}
	return merged, nil
}

// DefaultCatalog is the built-in topic catalog.
var DefaultCatalog = Catalog{
	"Software Engineer": {
		model.LevelEntry: {"Python Basics", "OOP Concepts", "Data Structures",
			"Algorithms", "SQL Fundamentals", "Git & Version Control",
			"Debugging", "Testing Basics", "Web Basics"},
		model.LevelMid: {"System Design", "API Design", "Testing Strategies",
			"Concurrency", "Database Design", "Cloud Basics",
			"Microservices", "Performance Optimization"},
		model.LevelSenior: {"Software Architecture", "Scalability", "Distributed Systems",
			"Cloud Architecture", "Technical Leadership", "Mentoring",
			"Code Review Best Practices", "DevOps", "Security"},
	},
	"Data Scientist": {
		model.LevelEntry: {"Python for Data Science", "Statistics Fundamentals",
			"Pandas & NumPy", "Data Visualization", "ML Basics",
			"SQL for Analysis", "Data Cleaning"},
		model.LevelMid: {"Feature Engineering", "Model Evaluation", "Deep Learning Basics",
			"SQL Advanced", "A/B Testing", "Time Series Analysis",
			"Model Deployment"},
		model.LevelSenior: {"MLOps", "Experiment Design", "Big Data Technologies",
			"Production ML Systems", "Team Leadership", "Stakeholder Management",
			"Advanced Statistics"},
	},
	"DevOps Engineer": {
		model.LevelEntry: {"Linux Basics", "Shell Scripting", "Networking Fundamentals",
			"Git & Version Control", "Containers"},
		model.LevelMid: {"CI/CD Pipelines", "Kubernetes", "Infrastructure as Code",
			"Monitoring & Alerting", "Cloud Networking"},
		model.LevelSenior: {"Platform Architecture", "Site Reliability", "Incident Management",
			"Security & Compliance", "Cost Optimization"},
	},
	"Frontend Developer": {
		model.LevelEntry: {"HTML & CSS", "JavaScript Basics", "DOM", "Responsive Design", "Browser DevTools"},
		model.LevelMid: {"React", "State Management", "TypeScript", "Web Performance", "Accessibility"},
		model.LevelSenior: {"Frontend Architecture", "Build Tooling", "Design Systems",
			"Rendering Strategies", "Technical Leadership"},
	},
}

// progression lists the difficulties drawn for each level and round.
var progression = map[model.ExperienceLevel]map[int][]model.Difficulty{
	model.LevelEntry: {
		1: {model.DifficultyEasy, model.DifficultyMedium},
		2: {model.DifficultyMedium},
		3: {model.DifficultyEasy, model.DifficultyMedium},
	},
	model.LevelMid: {
		1: {model.DifficultyMedium},
		2: {model.DifficultyMedium, model.DifficultyHard},
		3: {model.DifficultyMedium},
	},
	model.LevelSenior: {
		1: {model.DifficultyMedium, model.DifficultyHard},
		2: {model.DifficultyHard},
		3: {model.DifficultyMedium, model.DifficultyHard},
	},
}

// roundTypes lists the question types drawn in each round.
var roundTypes = map[int][]model.QuestionType{
	1: {model.TypeMultipleChoice, model.TypeOneWord},
	2: {model.TypeTheory, model.TypeCodeSnippet, model.TypeOutputPrediction, model.TypeFillBlank},
	3: {model.TypeCodingProblem},
}

func difficulties(level model.ExperienceLevel, round int) []model.Difficulty {
	if d := progression[level][round]; len(d) > 0 {
		return d
	}
	return []model.Difficulty{model.DifficultyMedium}
}
