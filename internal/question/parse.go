package question

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pavelanni/interviewer/internal/model"
)

// ErrMalformedReply matches every *ParseError.
var ErrMalformedReply = errors.New("malformed generation reply")

// ParseError reports a generation reply that could not be turned into a question.
type ParseError struct {
	Type   model.QuestionType
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s reply: %s", e.Type, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedReply) true for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedReply
}

// parsed is the type-independent result of parsing a reply.
type parsed struct {
	prompt    string
	reference string
	options   []string
}

type parser func(reply string) (parsed, error)

var parsers = map[model.QuestionType]parser{
	model.TypeMultipleChoice:   parseMultipleChoice,
	model.TypeOneWord:          parseOneWord,
	model.TypeTheory:           parseTheory,
	model.TypeCodeSnippet:      parseCodeSnippet,
	model.TypeOutputPrediction: parseOutputPrediction,
	model.TypeFillBlank:        parseFillBlank,
	model.TypeCodingProblem:    parseCodingProblem,
}

// parse dispatches reply to the parser for t.
func parse(t model.QuestionType, reply string) (parsed, error) {
	p, ok := parsers[t]
	if !ok {
		return parsed{}, &ParseError{Type: t, Reason: "no parser for type"}
	}
	return p(reply)
}

const (
	maxReferenceRunes = 500
	maxShortAnswer    = 5
	defaultCodePrompt = "What is the output of this code?"
)

var (
	labelRegex     = regexp.MustCompile(`(?i)^[\s*#>-]*(question|q|options|correct answer|answer|solution)\s*(?:\([^)]*\))?\s*\**\s*:\s*\**\s*(.*)$`)
	optionLine     = regexp.MustCompile(`^\s*\(?([A-Da-d])[).:]\s*(.+)$`)
	optionMarker   = regexp.MustCompile(`(?:^|[\s,;])\(?([A-D])[).:]\s*`)
	letterAnswer   = regexp.MustCompile(`(?i)^(?:option\s+)?\(?([A-D])(?:[).:]|\s*$)`)
	codeBlockRegex = regexp.MustCompile("(?s)```[\\w+#-]*[ \\t]*\\n(.*?)\\n?```")
	blankRegex     = regexp.MustCompile(`_{3,}`)
)

// label splits "Label: rest" lines, tolerating markdown emphasis.
func label(line string) (name, rest string, ok bool) {
	m := labelRegex.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	name = strings.ToLower(m[1])
	switch name {
	case "q":
		name = "question"
	case "answer", "solution":
		name = "correct answer"
	}
	return name, strings.TrimSpace(m[2]), true
}

func lines(reply string) []string {
	return strings.Split(strings.ReplaceAll(strings.TrimSpace(reply), "\r\n", "\n"), "\n")
}

// splitAtAnswer returns the text before and after the first answer label.
func splitAtAnswer(reply string) (before, after string, ok bool) {
	ls := lines(reply)
	for i, l := range ls {
		if name, rest, found := label(l); found && name == "correct answer" {
			before = strings.Join(ls[:i], "\n")
			after = strings.TrimSpace(rest + "\n" + strings.Join(ls[i+1:], "\n"))
			return strings.TrimSpace(before), after, true
		}
	}
	return reply, "", false
}

// stripQuestionLabel removes a leading "Question:" label from text.
func stripQuestionLabel(text string) string {
	ls := lines(text)
	for i, l := range ls {
		if name, rest, ok := label(l); ok && name == "question" {
			ls[i] = rest
			return strings.TrimSpace(strings.Join(ls[i:], "\n"))
		}
	}
	return strings.TrimSpace(text)
}

func cleanShort(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	return strings.Trim(s, "`*")
}

func limit(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func parseMultipleChoice(reply string) (parsed, error) {
	fail := func(reason string) (parsed, error) {
		return parsed{}, &ParseError{Type: model.TypeMultipleChoice, Reason: reason}
	}
	var p parsed
	var answer string
	for _, l := range lines(reply) {
		if name, rest, ok := label(l); ok {
			switch name {
			case "question":
				p.prompt = rest
			case "options":
				p.options = append(p.options, splitOptions(rest)...)
			case "correct answer":
				answer = cleanShort(rest)
			}
			continue
		}
		if m := optionLine.FindStringSubmatch(l); m != nil && len(p.options) < 4 {
			p.options = append(p.options, strings.TrimSpace(m[2]))
			continue
		}
		if p.prompt == "" && strings.Contains(l, "?") {
			p.prompt = strings.TrimSpace(l)
		}
	}
	if p.prompt == "" {
		return fail("no question text")
	}
	if len(p.options) > 4 {
		p.options = p.options[:4]
	}
	if len(p.options) < 2 {
		return fail("fewer than two options")
	}
	ref, ok := resolveChoice(answer, p.options)
	if !ok {
		return fail(fmt.Sprintf("answer %q matches no option", answer))
	}
	p.reference = ref
	return p, nil
}

// splitOptions splits "A) x, B) y" into ["x", "y"], or on commas when unlettered.
func splitOptions(s string) []string {
	idx := optionMarker.FindAllStringSubmatchIndex(s, -1)
	var out []string
	if len(idx) == 0 {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
		return out
	}
	for i, m := range idx {
		end := len(s)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		if o := strings.Trim(strings.TrimSpace(s[m[1]:end]), ",;"); o != "" {
			out = append(out, strings.TrimSpace(o))
		}
	}
	return out
}

// resolveChoice maps a letter or option text onto the option text.
func resolveChoice(answer string, options []string) (string, bool) {
	if answer == "" {
		return "", false
	}
	for _, o := range options {
		if strings.EqualFold(o, answer) {
			return o, true
		}
	}
	if m := letterAnswer.FindStringSubmatch(answer); m != nil {
		i := int(strings.ToUpper(m[1])[0] - 'A')
		if i < len(options) {
			return options[i], true
		}
	}
	for _, o := range options {
		if strings.Contains(strings.ToLower(answer), strings.ToLower(o)) {
			return o, true
		}
	}
	return "", false
}

func parseOneWord(reply string) (parsed, error) {
	fail := func(reason string) (parsed, error) {
		return parsed{}, &ParseError{Type: model.TypeOneWord, Reason: reason}
	}
	var p parsed
	for _, l := range lines(reply) {
		if name, rest, ok := label(l); ok {
			switch name {
			case "question":
				p.prompt = rest
			case "correct answer":
				p.reference = cleanShort(rest)
			}
			continue
		}
		if p.prompt == "" && strings.Contains(l, "?") {
			p.prompt = strings.TrimSpace(l)
		}
	}
	if p.prompt == "" {
		return fail("no question text")
	}
	if p.reference == "" {
		return fail("no answer")
	}
	if len(strings.Fields(p.reference)) > maxShortAnswer {
		return fail("answer is not a short answer")
	}
	return p, nil
}

func parseTheory(reply string) (parsed, error) {
	before, after, ok := splitAtAnswer(reply)
	if !ok || after == "" {
		return parsed{}, &ParseError{Type: model.TypeTheory, Reason: "no answer section"}
	}
	prompt := stripQuestionLabel(before)
	if prompt == "" {
		return parsed{}, &ParseError{Type: model.TypeTheory, Reason: "no question text"}
	}
	return parsed{prompt: prompt, reference: limit(after, maxReferenceRunes)}, nil
}

// extractCode returns the first fenced block, or the indented lines of reply.
func extractCode(reply string) string {
	if m := codeBlockRegex.FindStringSubmatch(reply); m != nil {
		return strings.TrimRight(m[1], "\n")
	}
	var code []string
	for _, l := range lines(reply) {
		if strings.HasPrefix(l, "    ") || strings.HasPrefix(l, "\t") {
			code = append(code, l)
		}
	}
	return strings.Join(code, "\n")
}

func codePrompt(t model.QuestionType, reply string) (prompt, answer string, err error) {
	code := extractCode(reply)
	if strings.TrimSpace(code) == "" {
		return "", "", &ParseError{Type: t, Reason: "no code"}
	}
	question := defaultCodePrompt
	for _, l := range lines(reply) {
		if name, rest, ok := label(l); ok && name == "question" && rest != "" {
			question = rest
			break
		}
	}
	rest := reply
	if block := codeBlockRegex.FindString(reply); block != "" {
		rest = strings.Replace(reply, block, "", 1)
	}
	_, after, ok := splitAtAnswer(rest)
	if !ok || after == "" {
		return "", "", &ParseError{Type: t, Reason: "no answer"}
	}
	return question + "\n\n```python\n" + code + "\n```", after, nil
}

func parseCodeSnippet(reply string) (parsed, error) {
	prompt, answer, err := codePrompt(model.TypeCodeSnippet, reply)
	if err != nil {
		return parsed{}, err
	}
	return parsed{prompt: prompt, reference: limit(answer, maxReferenceRunes)}, nil
}

// parseOutputPrediction keeps only the first paragraph of the answer, which is the exact output.
func parseOutputPrediction(reply string) (parsed, error) {
	prompt, answer, err := codePrompt(model.TypeOutputPrediction, reply)
	if err != nil {
		return parsed{}, err
	}
	if m := codeBlockRegex.FindStringSubmatch(answer); m != nil {
		answer = m[1]
	} else if i := strings.Index(answer, "\n\n"); i >= 0 {
		answer = answer[:i]
	}
	answer = strings.TrimSpace(strings.Trim(strings.TrimSpace(answer), "`"))
	if answer == "" {
		return parsed{}, &ParseError{Type: model.TypeOutputPrediction, Reason: "empty output"}
	}
	return parsed{prompt: prompt, reference: answer}, nil
}

func parseFillBlank(reply string) (parsed, error) {
	fail := func(reason string) (parsed, error) {
		return parsed{}, &ParseError{Type: model.TypeFillBlank, Reason: reason}
	}
	before, after, ok := splitAtAnswer(reply)
	if !ok {
		return fail("no answer")
	}
	answer := cleanShort(strings.SplitN(after, "\n", 2)[0])
	if answer == "" {
		return fail("no answer")
	}
	prompt := stripQuestionLabel(codeBlockRegex.ReplaceAllString(before, "$1"))
	if !blankRegex.MatchString(prompt) && !strings.Contains(strings.ToLower(prompt), "blank") {
		return fail("no blank in question")
	}
	return parsed{prompt: prompt, reference: answer}, nil
}

func parseCodingProblem(reply string) (parsed, error) {
	fail := func(reason string) (parsed, error) {
		return parsed{}, &ParseError{Type: model.TypeCodingProblem, Reason: reason}
	}
	before, after, ok := splitAtAnswer(reply)
	if !ok {
		blocks := codeBlockRegex.FindAllStringSubmatchIndex(reply, -1)
		if len(blocks) == 0 {
			return fail("no solution")
		}
		last := blocks[len(blocks)-1]
		before = reply[:last[0]] + reply[last[1]:]
		after = reply[last[2]:last[3]]
	} else if m := codeBlockRegex.FindStringSubmatch(after); m != nil {
		after = m[1]
	}
	problem := stripQuestionLabel(before)
	solution := strings.TrimSpace(after)
	if problem == "" {
		return fail("no problem statement")
	}
	if solution == "" {
		return fail("no solution")
	}
	return parsed{prompt: problem, reference: solution}, nil
}
