package question

import (
	"fmt"

	"github.com/pavelanni/interviewer/internal/model"
)

// Template is a statically authored question used when generation cannot be used.
type Template struct {
	Type       model.QuestionType
	Topic      string
	Difficulty model.Difficulty
	Prompt     string
	Reference  string
	Options    []string
}

// Bank holds fallback templates grouped by question type.
type Bank struct {
	byType map[model.QuestionType][]Template
}

var allTypes = []model.QuestionType{
	model.TypeMultipleChoice, model.TypeOneWord, model.TypeTheory, model.TypeCodeSnippet,
	model.TypeOutputPrediction, model.TypeFillBlank, model.TypeCodingProblem,
}

// NewBank groups templates by type. Every question type needs at least one template.
func NewBank(templates []Template) (*Bank, error) {
	b := &Bank{byType: make(map[model.QuestionType][]Template)}
	for _, t := range templates {
		b.byType[t.Type] = append(b.byType[t.Type], t)
	}
	for _, t := range allTypes {
		if len(b.byType[t]) == 0 {
			return nil, fmt.Errorf("fallback bank has no %s template", t)
		}
	}
	return b, nil
}

// Pick returns a template of type t starting from a random position,
// preferring one whose content hash is not yet used.
func (b *Bank) Pick(t model.QuestionType, intn func(int) int, used func(hash string) bool) Template {
	candidates := b.byType[t]
	start := intn(len(candidates))
	for i := range candidates {
		c := candidates[(start+i)%len(candidates)]
		if used == nil || !used(ContentHash(c.Prompt)) {
			return c
		}
	}
	return candidates[start]
}

// DefaultBank is the built-in, role-agnostic fallback bank.
var DefaultBank = mustBank(defaultTemplates)

func mustBank(templates []Template) *Bank {
	b, err := NewBank(templates)
	if err != nil {
		panic(err)
	}
	return b
}

var defaultTemplates = []Template{
	// Round 1: multiple choice.
	{Type: model.TypeMultipleChoice, Topic: "Data Structures", Difficulty: model.DifficultyEasy,
		Prompt:    "What is the average time complexity of looking up a key in a hash map?",
		Options:   []string{"O(1)", "O(n)", "O(log n)", "O(n^2)"},
		Reference: "O(1)"},
	{Type: model.TypeMultipleChoice, Topic: "SQL Fundamentals", Difficulty: model.DifficultyEasy,
		Prompt:    "Which SQL command removes a table and its definition from a database?",
		Options:   []string{"DELETE", "REMOVE", "DROP", "TRUNCATE"},
		Reference: "DROP"},
	{Type: model.TypeMultipleChoice, Topic: "Algorithms", Difficulty: model.DifficultyMedium,
		Prompt:    "What is the worst-case time complexity of quicksort?",
		Options:   []string{"O(n log n)", "O(n^2)", "O(n)", "O(log n)"},
		Reference: "O(n^2)"},
	{Type: model.TypeMultipleChoice, Topic: "Data Structures", Difficulty: model.DifficultyEasy,
		Prompt:    "Which data structure follows last-in, first-out order?",
		Options:   []string{"Queue", "Stack", "Heap", "Linked list"},
		Reference: "Stack"},
	{Type: model.TypeMultipleChoice, Topic: "Git & Version Control", Difficulty: model.DifficultyEasy,
		Prompt:    "Which git command records staged changes in the repository history?",
		Options:   []string{"git add", "git push", "git commit", "git stash"},
		Reference: "git commit"},
	{Type: model.TypeMultipleChoice, Topic: "Web Basics", Difficulty: model.DifficultyEasy,
		Prompt:    "Which HTTP status code means the requested resource was not found?",
		Options:   []string{"200", "301", "404", "500"},
		Reference: "404"},
	{Type: model.TypeMultipleChoice, Topic: "Testing Basics", Difficulty: model.DifficultyMedium,
		Prompt:    "Which kind of test exercises a single function in isolation?",
		Options:   []string{"Unit test", "Integration test", "End-to-end test", "Load test"},
		Reference: "Unit test"},
	{Type: model.TypeMultipleChoice, Topic: "Concurrency", Difficulty: model.DifficultyMedium,
		Prompt:    "What condition occurs when two threads each wait for a lock the other holds?",
		Options:   []string{"Race condition", "Deadlock", "Starvation", "Livelock"},
		Reference: "Deadlock"},

	// Round 1: one word.
	{Type: model.TypeOneWord, Topic: "Python Basics", Difficulty: model.DifficultyEasy,
		Prompt: "Which Python keyword is used to define a function?", Reference: "def"},
	{Type: model.TypeOneWord, Topic: "SQL Fundamentals", Difficulty: model.DifficultyEasy,
		Prompt: "Which SQL clause filters rows before grouping?", Reference: "WHERE"},
	{Type: model.TypeOneWord, Topic: "OOP Concepts", Difficulty: model.DifficultyEasy,
		Prompt: "What is the OOP principle of hiding internal state behind an interface called?", Reference: "Encapsulation"},
	{Type: model.TypeOneWord, Topic: "Data Structures", Difficulty: model.DifficultyEasy,
		Prompt: "Which data structure processes elements in first-in, first-out order?", Reference: "Queue"},
	{Type: model.TypeOneWord, Topic: "Git & Version Control", Difficulty: model.DifficultyEasy,
		Prompt: "Which git command creates a local copy of a remote repository?", Reference: "clone"},
	{Type: model.TypeOneWord, Topic: "Web Basics", Difficulty: model.DifficultyEasy,
		Prompt: "Which HTTP method is conventionally used to retrieve a resource?", Reference: "GET"},
	{Type: model.TypeOneWord, Topic: "Algorithms", Difficulty: model.DifficultyMedium,
		Prompt: "What is the name of the technique that stores results of subproblems to avoid recomputation?", Reference: "Memoization"},
	{Type: model.TypeOneWord, Topic: "OOP Concepts", Difficulty: model.DifficultyMedium,
		Prompt: "What is the ability of different types to be used through one interface called?", Reference: "Polymorphism"},

	// Round 2.
	{Type: model.TypeTheory, Topic: "Distributed Systems", Difficulty: model.DifficultyMedium,
		Prompt:    "Explain the CAP theorem and its implications for distributed systems.",
		Reference: "consistency availability partition tolerance tradeoff: a distributed system can guarantee only two of the three during a network partition"},
	{Type: model.TypeTheory, Topic: "Database Design", Difficulty: model.DifficultyMedium,
		Prompt:    "Explain what database normalization is and why it is used.",
		Reference: "normalization organizes tables to reduce redundancy and avoid update anomalies by splitting data into related tables"},
	{Type: model.TypeTheory, Topic: "API Design", Difficulty: model.DifficultyMedium,
		Prompt:    "Explain what makes an HTTP API operation idempotent and why it matters.",
		Reference: "idempotent operations produce the same result when repeated, which makes retries safe"},
	{Type: model.TypeTheory, Topic: "Testing Strategies", Difficulty: model.DifficultyMedium,
		Prompt:    "Explain the difference between a mock and a stub in testing.",
		Reference: "stubs return canned answers while mocks also verify the interactions they receive"},

	{Type: model.TypeCodeSnippet, Topic: "Python Basics", Difficulty: model.DifficultyMedium,
		Prompt:    "What is the output?\n\n```python\nprint(2 + 2 * 2)\n```",
		Reference: "6 because multiplication binds tighter than addition"},
	{Type: model.TypeCodeSnippet, Topic: "Python Basics", Difficulty: model.DifficultyMedium,
		Prompt:    "What does the second call print?\n\n```python\ndef add(x, items=[]):\n    items.append(x)\n    return items\n\nprint(add(1))\nprint(add(2))\n```",
		Reference: "[1, 2] because the default list is created once and shared between calls"},
	{Type: model.TypeCodeSnippet, Topic: "Python Basics", Difficulty: model.DifficultyMedium,
		Prompt:    "What is the output?\n\n```python\na = [1, 2, 3]\nb = a\nb.append(4)\nprint(a)\n```",
		Reference: "[1, 2, 3, 4] because a and b reference the same list"},

	{Type: model.TypeOutputPrediction, Topic: "Python Basics", Difficulty: model.DifficultyEasy,
		Prompt:    "What does this code print?\n\n```python\nprint(len({1, 1, 2}))\n```",
		Reference: "2"},
	{Type: model.TypeOutputPrediction, Topic: "Python Basics", Difficulty: model.DifficultyEasy,
		Prompt:    "What does this code print?\n\n```python\nprint([i * i for i in range(4)])\n```",
		Reference: "[0, 1, 4, 9]"},
	{Type: model.TypeOutputPrediction, Topic: "Python Basics", Difficulty: model.DifficultyMedium,
		Prompt:    "What does this code print?\n\n```python\nprint('abc'[::-1])\n```",
		Reference: "cba"},

	{Type: model.TypeFillBlank, Topic: "Python Basics", Difficulty: model.DifficultyEasy,
		Prompt: "To define an empty class body in Python, write: class MyClass: _____", Reference: "pass"},
	{Type: model.TypeFillBlank, Topic: "Python Basics", Difficulty: model.DifficultyEasy,
		Prompt: "Fill in the blank to open a file for reading: open('data.txt', _____)", Reference: "'r'"},
	{Type: model.TypeFillBlank, Topic: "SQL Fundamentals", Difficulty: model.DifficultyEasy,
		Prompt: "Fill in the blank to sort results: SELECT name FROM users _____ BY name", Reference: "ORDER"},

	// Round 3.
	{Type: model.TypeCodingProblem, Topic: "Algorithms", Difficulty: model.DifficultyEasy,
		Prompt:    "Write a function that checks whether a string is a palindrome.",
		Reference: "def is_palindrome(s):\n    return s == s[::-1]"},
	{Type: model.TypeCodingProblem, Topic: "Algorithms", Difficulty: model.DifficultyMedium,
		Prompt:    "Given an array of integers nums and an integer target, return the indices of the two numbers that add up to target.",
		Reference: "def two_sum(nums, target):\n    seen = {}\n    for i, n in enumerate(nums):\n        if target - n in seen:\n            return [seen[target - n], i]\n        seen[n] = i\n    return []"},
	{Type: model.TypeCodingProblem, Topic: "Data Structures", Difficulty: model.DifficultyMedium,
		Prompt:    "Write a function that returns true if a string of brackets ()[]{} is balanced.",
		Reference: "def balanced(s):\n    pairs = {')': '(', ']': '[', '}': '{'}\n    stack = []\n    for c in s:\n        if c in '([{':\n            stack.append(c)\n        elif not stack or stack.pop() != pairs[c]:\n            return False\n    return not stack"},
	{Type: model.TypeCodingProblem, Topic: "Algorithms", Difficulty: model.DifficultyHard,
		Prompt:    "Write a function that returns the length of the longest substring without repeating characters.",
		Reference: "def longest(s):\n    last, start, best = {}, 0, 0\n    for i, c in enumerate(s):\n        if last.get(c, -1) >= start:\n            start = last[c] + 1\n        last[c] = i\n        best = max(best, i - start + 1)\n    return best"},
}
