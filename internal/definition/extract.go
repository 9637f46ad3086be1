package definition

import (
	"regexp"
	"strings"
)

// Stage is one stage declaration recovered from definition text.
type Stage struct {
	// Name is the internal stage name as written in the declaration.
	Name string
	// DisplayName is the optional human-facing name, empty when absent.
	DisplayName string
	// DependsOn holds dependency references exactly as written. Entries may
	// be internal names or display names; resolution happens at layout time.
	DependsOn []string
}

// Label returns the name a human should see for the stage.
func (s Stage) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

var (
	stageRe       = regexp.MustCompile(`(?i)^\s*-\s*stage\s*:\s*(.+?)\s*$`)
	displayNameRe = regexp.MustCompile(`(?i)^\s*displayName\s*:\s*(.+?)\s*$`)
	dependsOnRe   = regexp.MustCompile(`(?i)^\s*dependsOn\s*:\s*(.*?)\s*$`)
	jobsRe        = regexp.MustCompile(`(?i)^\s*jobs\s*:\s*$`)
	listItemRe    = regexp.MustCompile(`^\s*-\s*(.+?)\s*$`)
)

// Extract scans raw pipeline definition text for stage declarations and their
// dependency lists. It returns the stages in declaration order. Text that
// matches nothing, including an empty string, yields an empty slice; Extract
// never fails.
func Extract(text string) []Stage {
	var (
		stages []Stage
		cur    *Stage
		// inStageProps is true while scanning a stage's own property block.
		// The first "jobs:" line flips it off for the remainder of the
		// stage, so that properties of nested jobs are never attributed to
		// the stage itself.
		inStageProps bool
		// collectingDeps is true while consuming the "- item" lines of a
		// multi-line dependsOn list.
		collectingDeps bool
	)

	flush := func() {
		if cur != nil {
			stages = append(stages, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if m := stageRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Stage{Name: unquote(m[1])}
			inStageProps = true
			collectingDeps = false
			continue
		}

		if cur == nil {
			continue
		}

		if collectingDeps {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if m := listItemRe.FindStringSubmatch(line); m != nil {
				if dep := unquote(m[1]); !isNoDependency(dep) {
					cur.DependsOn = append(cur.DependsOn, dep)
				}
				continue
			}
			// First non-item line ends the list; the line itself still
			// gets the normal treatment below.
			collectingDeps = false
		}

		if jobsRe.MatchString(line) {
			inStageProps = false
			continue
		}
		if !inStageProps {
			continue
		}

		if m := displayNameRe.FindStringSubmatch(line); m != nil {
			if cur.DisplayName == "" {
				cur.DisplayName = unquote(m[1])
			}
			continue
		}

		if m := dependsOnRe.FindStringSubmatch(line); m != nil {
			value := strings.TrimSpace(m[1])
			switch {
			case value == "":
				// Bare "dependsOn:" introduces a multi-line list.
				collectingDeps = true
			case strings.HasPrefix(value, "["):
				cur.DependsOn = append(cur.DependsOn, splitInlineList(value)...)
			default:
				if dep := unquote(value); !isNoDependency(dep) {
					cur.DependsOn = append(cur.DependsOn, dep)
				}
			}
		}
	}

	flush()
	return stages
}

// splitInlineList breaks a bracketed inline list like `[A, "B"]` into its
// cleaned entries. Sentinel entries and empties are dropped.
func splitInlineList(value string) []string {
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	var deps []string
	for _, part := range strings.Split(value, ",") {
		if dep := unquote(strings.TrimSpace(part)); !isNoDependency(dep) {
			deps = append(deps, dep)
		}
	}
	return deps
}

// isNoDependency reports whether a written value is an explicit "no
// dependency" sentinel rather than a reference to a stage named that way.
func isNoDependency(value string) bool {
	return value == "" || strings.EqualFold(value, "null") || value == "[]"
}

// unquote strips one matching pair of single or double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
