package schema

import (
	"strings"
)

// NormalizeContent trims whitespace from identifying fields and drops
// entries that carry nothing to display. Project names keep their padding
// because the projects listing renders it around the hyperlink.
func NormalizeContent(c Content) Content {
	out := Content{
		Experience: make([]Experience, 0, len(c.Experience)),
		Projects:   make([]Project, 0, len(c.Projects)),
		Links:      normalizeLinks(c.Links),
	}
	for _, exp := range c.Experience {
		exp.Title = strings.TrimSpace(exp.Title)
		exp.Company = strings.TrimSpace(exp.Company)
		exp.Period = strings.TrimSpace(exp.Period)
		exp.Description = Description(compactStrings(exp.Description))
		if exp.Title == "" && exp.Company == "" {
			continue
		}
		out.Experience = append(out.Experience, exp)
	}
	for _, project := range c.Projects {
		if strings.TrimSpace(project.Name) == "" {
			continue
		}
		project.Tagline = strings.TrimSpace(project.Tagline)
		project.Link = strings.TrimSpace(project.Link)
		project.Period = strings.TrimSpace(project.Period)
		project.Description = compactStrings(project.Description)
		project.Tech = compactStrings(project.Tech)
		out.Projects = append(out.Projects, project)
	}
	return out
}

func normalizeLinks(l Links) Links {
	return Links{
		X:         strings.TrimSpace(l.X),
		LinkedIn:  strings.TrimSpace(l.LinkedIn),
		GitHub:    strings.TrimSpace(l.GitHub),
		Instagram: strings.TrimSpace(l.Instagram),
		Email:     strings.TrimSpace(l.Email),
		Phone:     strings.TrimSpace(l.Phone),
	}
}

func compactStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
