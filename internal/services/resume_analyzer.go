package services

import (
	"regexp"
	"strconv"
	"strings"

	"debo-engineering/job-portal/internal/logger"
)

var skillVocabulary = []string{
	"JavaScript", "Python", "Java", "C++", "React", "Node.js", "SQL", "AWS", "Docker", "Kubernetes",
	"TypeScript", "GraphQL", "MongoDB", "Express", "Redux", "HTML", "CSS", "Sass", "Git", "CI/CD",
}

var knownCertifications = []string{
	"AWS Certified Solutions Architect",
}

var (
	educationPattern    = regexp.MustCompile(`(?i)\b(Bachelor|Master|PhD|Diploma|Certificate|BSc|MSc|BA|MA|BS|MS)\b[^\n]*`)
	experiencePattern   = regexp.MustCompile(`(?i)(\d+)\+?\s+years?\s+(of\s+)?experience`)
	declaredSkillsLine  = regexp.MustCompile(`(?im)^\s*skills\s*[:\-]\s*([^\n]+)$`)
	leadershipSkillWord = regexp.MustCompile(`(?i)lead|manager|architect`)
)

// ResumeInsights is the heuristic reading of a resume. Skills holds vocabulary
// matches not already known to the caller.
type ResumeInsights struct {
	Skills           []string `json:"skills"`
	DeclaredSkills   []string `json:"declared_skills"`
	Education        []string `json:"education"`
	Experience       int      `json:"experience"`
	Certifications   []string `json:"certifications"`
	RecommendedLevel string   `json:"recommended_level"`
	Parsed           bool     `json:"parsed"`
}

type ResumeAnalyzer interface {
	Analyze(text string, knownSkills []string) ResumeInsights
	AnalyzeFile(path string, knownSkills []string) ResumeInsights
}

type resumeAnalyzer struct {
	parser PDFParserService
	log    logger.Logger
}

func NewResumeAnalyzer(parser PDFParserService, log logger.Logger) ResumeAnalyzer {
	return &resumeAnalyzer{parser: parser, log: log}
}

func (a *resumeAnalyzer) Analyze(text string, knownSkills []string) ResumeInsights {
	insights := ResumeInsights{
		Skills:         RecommendSkills(text, knownSkills),
		DeclaredSkills: extractDeclaredSkills(text),
		Education:      extractEducation(text),
		Experience:     extractExperience(text),
		Certifications: extractCertifications(text),
		Parsed:         strings.TrimSpace(text) != "",
	}

	all := MergeSkills(knownSkills, insights.DeclaredSkills)
	all = MergeSkills(all, insights.Skills)
	insights.RecommendedLevel = RecommendGadaLevel(all, insights.Experience, insights.Certifications)

	return insights
}

// AnalyzeFile never fails; unreadable resumes yield empty insights.
func (a *resumeAnalyzer) AnalyzeFile(path string, knownSkills []string) ResumeInsights {
	text, err := a.parser.ExtractText(path)
	if err != nil {
		a.log.Warn("resume parsing failed, using empty insights", map[string]interface{}{
			"path":  path,
			"error": err,
		})
		text = ""
	}
	return a.Analyze(text, knownSkills)
}

// RecommendSkills returns vocabulary skills mentioned in text and absent from existing.
func RecommendSkills(text string, existing []string) []string {
	recommended := []string{}
	if text == "" {
		return recommended
	}

	lowerText := strings.ToLower(text)
	known := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		known[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	for _, skill := range skillVocabulary {
		lower := strings.ToLower(skill)
		if _, ok := known[lower]; ok {
			continue
		}
		if strings.Contains(lowerText, lower) {
			recommended = append(recommended, skill)
		}
	}

	return recommended
}

// RecommendGadaLevel applies the rules in priority order and returns a level display name.
func RecommendGadaLevel(skills []string, experience int, certifications []string) string {
	for _, c := range certifications {
		if strings.EqualFold(c, "AWS Certified Solutions Architect") {
			return "Expert Developer"
		}
	}
	for _, s := range skills {
		if strings.EqualFold(strings.TrimSpace(s), "Cloud Computing") {
			return "Expert Developer"
		}
	}

	if experience >= 5 {
		for _, s := range skills {
			if leadershipSkillWord.MatchString(s) {
				return "Tech Lead"
			}
		}
	}

	switch {
	case experience > 3:
		return "Senior Developer"
	case experience > 1:
		return "Mid-Level Developer"
	default:
		return "Beginner"
	}
}

func extractEducation(text string) []string {
	education := []string{}
	for _, m := range educationPattern.FindAllString(text, -1) {
		if line := strings.TrimSpace(m); line != "" {
			education = append(education, line)
		}
	}
	return education
}

func extractExperience(text string) int {
	m := experiencePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	years, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return years
}

func extractDeclaredSkills(text string) []string {
	m := declaredSkillsLine.FindStringSubmatch(text)
	if len(m) < 2 {
		return []string{}
	}
	return MergeSkills(nil, strings.Split(m[1], ","))
}

func extractCertifications(text string) []string {
	found := []string{}
	lower := strings.ToLower(text)
	for _, c := range knownCertifications {
		if strings.Contains(lower, strings.ToLower(c)) {
			found = append(found, c)
		}
	}
	return found
}
