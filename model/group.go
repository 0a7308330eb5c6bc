package model

import "strings"

// Group represents a research group derived from store rows
type Group struct {
	Name               string   `json:"name"`
	Category           string   `json:"category,omitempty"`
	Subcategory        string   `json:"subcategory,omitempty"`
	DataClassification string   `json:"dataClassification,omitempty"`
	Description        string   `json:"description,omitempty"`
	Managers           []string `json:"managers"`
	Members            []string `json:"members"`
	Read               []string `json:"read"`
}

// HasMember reports whether user (in user#zone form) belongs to the group
func (g *Group) HasMember(user string) bool {
	for _, member := range g.Members {
		if member == user {
			return true
		}
	}
	return false
}

// SetAttribute applies a group attribute row
func (g *Group) SetAttribute(name, value string) {
	switch name {
	case "category":
		g.Category = value
	case "subcategory":
		g.Subcategory = value
	case "data_classification":
		g.DataClassification = value
	case "description":
		if value == "." {
			value = ""
		}
		g.Description = value
	case "manager":
		g.Managers = append(g.Managers, value)
	}
}

// ReadGroup returns the read-only companion group name, or empty when the
// group kind has none.
func ReadGroup(name string) string {
	if strings.HasPrefix(name, "research-") || strings.HasPrefix(name, "initial-") {
		return "read-" + name[strings.Index(name, "-")+1:]
	}
	return ""
}

// QualifiedUser returns user in user#zone form
func QualifiedUser(user, zone string) string {
	if strings.Contains(user, "#") || zone == "" {
		return user
	}
	return user + "#" + zone
}

// PlainUser strips the #zone suffix
func PlainUser(user string) string {
	if index := strings.Index(user, "#"); index != -1 {
		return user[:index]
	}
	return user
}
