package domain

import (
	"slices"
	"strings"
)

// SkillsCatalog lists the skills offered by search and signup pickers.
//
//nolint:gochecknoglobals
var SkillsCatalog = []string{
	"JavaScript", "TypeScript", "React", "Angular", "Vue.js", "Node.js",
	"Express", "Python", "Django", "Flask", "Java", "Spring Boot",
	"C#", ".NET", "Go", "Rust", "PHP", "Laravel", "Ruby on Rails",
	"Kotlin", "Swift", "Flutter", "React Native", "SQL", "PostgreSQL",
	"MySQL", "MongoDB", "Redis", "GraphQL", "REST APIs", "Docker",
	"Kubernetes", "AWS", "Azure", "Google Cloud", "CI/CD", "Git",
	"Linux", "HTML", "CSS", "Tailwind CSS", "Figma", "UI/UX Design",
	"Machine Learning", "Data Analysis", "Project Management",
}

// NormalizeSkills trims entries and removes blanks and case-insensitive duplicates,
// keeping the first spelling.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))

	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}

		if slices.ContainsFunc(out, func(s string) bool { return strings.EqualFold(s, skill) }) {
			continue
		}

		out = append(out, skill)
	}

	return out
}
